package wiki

// ItemMetadata describes one tradable item from the /mapping endpoint.
// BuyLimit 0 means the limit is unknown; ResetTime defaults to 4 hours
// when the API omits it.
type ItemMetadata struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	BuyLimit  int64  `json:"limit"`
	ResetTime int    `json:"reset_time"` // seconds per buy-limit window
}

// DefaultResetTime is the standard buy-limit reset window in seconds.
const DefaultResetTime = 14400

// FetchItemMapping fetches item metadata for all tradable items, keyed by
// item ID. Items without an explicit reset time get DefaultResetTime.
func (c *Client) FetchItemMapping() (map[int]ItemMetadata, error) {
	var items []ItemMetadata
	if err := c.GetJSON(c.BaseURL+"/mapping", &items); err != nil {
		return nil, err
	}

	out := make(map[int]ItemMetadata, len(items))
	for _, it := range items {
		if it.ResetTime <= 0 {
			it.ResetTime = DefaultResetTime
		}
		out[it.ID] = it
	}
	return out, nil
}
