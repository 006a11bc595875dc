package wiki

import "fmt"

// TimeseriesEntry is one 24h bucket of an item's price history.
// Nulls from the API decode to zero; zero prices/volumes are treated as
// absent samples by the stats calculator.
type TimeseriesEntry struct {
	Timestamp       int64 `json:"timestamp"`
	AvgHighPrice    int64 `json:"avgHighPrice"`
	AvgLowPrice     int64 `json:"avgLowPrice"`
	HighPriceVolume int64 `json:"highPriceVolume"`
	LowPriceVolume  int64 `json:"lowPriceVolume"`
}

type timeseriesResponse struct {
	Data []TimeseriesEntry `json:"data"`
}

// FetchTimeseries fetches the daily price history series for one item.
func (c *Client) FetchTimeseries(itemID int) ([]TimeseriesEntry, error) {
	url := fmt.Sprintf("%s/timeseries?timestep=24h&id=%d", c.BaseURL, itemID)
	var resp timeseriesResponse
	if err := c.GetJSON(url, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
