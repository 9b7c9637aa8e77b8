package catalog

import "context"

// savedPageSize is the page size used when walking the whole library.
const savedPageSize = 50

// AllSavedTracks walks the user's entire saved-tracks library. Termination
// is driven by the API's next-page link (null on the final page); a short
// page is honored as a fallback for responses that omit the link.
func (c *Client) AllSavedTracks(ctx context.Context) ([]SavedTrack, error) {
	var all []SavedTrack
	offset := 0
	for {
		page, err := c.SavedTracks(ctx, savedPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if page.Next == nil || len(page.Items) < savedPageSize {
			return all, nil
		}
		offset += savedPageSize
	}
}
