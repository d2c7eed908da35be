package hub

import (
	"encoding/json"

	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/infigaming-com/gold-monitor/util"
)

// Record is the wire form of one reading.
type Record struct {
	BuyingRate  string `json:"buying_rate"`
	SellingRate string `json:"selling_rate"`
	Status      string `json:"status"`
	Trend       string `json:"trend"`
	CreatedAt   string `json:"created_at"`
}

type HistoryMessage struct {
	History []Record `json:"history"`
}

type PingMessage struct {
	Ping bool `json:"ping"`
}

var pingPayload = mustMarshal(PingMessage{Ping: true})

// FormatHistory renders readings in store order (oldest first).
func FormatHistory(readings []rate.Reading) []Record {
	records := make([]Record, 0, len(readings))
	for _, r := range readings {
		records = append(records, FormatReading(r))
	}
	return records
}

func FormatReading(r rate.Reading) Record {
	return Record{
		BuyingRate:  util.FormatThousands(r.BuyRate),
		SellingRate: util.FormatThousands(r.SellRate),
		Status:      r.Trend.Label(),
		Trend:       r.Trend.String(),
		CreatedAt:   r.UpdatedAt,
	}
}

func EncodeHistory(readings []rate.Reading) ([]byte, error) {
	return json.Marshal(HistoryMessage{History: FormatHistory(readings)})
}

func EncodePing() []byte {
	return pingPayload
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
