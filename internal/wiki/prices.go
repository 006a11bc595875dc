package wiki

import "strconv"

// PriceSnapshot holds the latest instant-buy/instant-sell prices for an item.
// A zero price means the side has no recent trade data.
type PriceSnapshot struct {
	High     int64 `json:"high"`
	HighTime int64 `json:"highTime"`
	Low      int64 `json:"low"`
	LowTime  int64 `json:"lowTime"`
}

// DailyStats holds 24-hour aggregate prices and volumes for an item.
// JSON nulls decode to zero, which downstream code treats as missing.
type DailyStats struct {
	AvgHigh    int64 `json:"avgHighPrice"`
	AvgLow     int64 `json:"avgLowPrice"`
	HighVolume int64 `json:"highPriceVolume"`
	LowVolume  int64 `json:"lowPriceVolume"`
}

type latestResponse struct {
	Data map[string]PriceSnapshot `json:"data"`
}

type dailyResponse struct {
	Data map[string]DailyStats `json:"data"`
}

// FetchLatestPrices fetches the latest instant prices for all items.
func (c *Client) FetchLatestPrices() (map[int]PriceSnapshot, error) {
	var resp latestResponse
	if err := c.GetJSON(c.BaseURL+"/latest", &resp); err != nil {
		return nil, err
	}
	return intKeys(resp.Data), nil
}

// FetchDailyStats fetches 24-hour aggregates for all items.
func (c *Client) FetchDailyStats() (map[int]DailyStats, error) {
	var resp dailyResponse
	if err := c.GetJSON(c.BaseURL+"/24h", &resp); err != nil {
		return nil, err
	}
	return intKeys(resp.Data), nil
}

// intKeys converts the API's string item-ID keys to ints, dropping
// malformed entries.
func intKeys[V any](in map[string]V) map[int]V {
	out := make(map[int]V, len(in))
	for k, v := range in {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}
