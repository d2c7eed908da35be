package rate

type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// Reading is an accepted observation. Trend is fixed at acceptance time.
type Reading struct {
	BuyRate   int64  `json:"buying_rate"`
	SellRate  int64  `json:"selling_rate"`
	Trend     Trend  `json:"trend"`
	UpdatedAt string `json:"updated_at"`
}

func NewReading(q Quote, trend Trend) Reading {
	return Reading{
		BuyRate:   q.BuyRate,
		SellRate:  q.SellRate,
		Trend:     trend,
		UpdatedAt: q.UpdatedAt,
	}
}

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}

// Text is the plain Indonesian status word.
func (t Trend) Text() string {
	switch t {
	case TrendUp:
		return "Naik"
	case TrendDown:
		return "Turun"
	default:
		return "Tetap"
	}
}

// Label is the dashboard status text.
func (t Trend) Label() string {
	switch t {
	case TrendUp:
		return "🚀 " + t.Text()
	case TrendDown:
		return "🔻 " + t.Text()
	default:
		return "➖ " + t.Text()
	}
}

// Classify compares the buy rate of a new reading with the last accepted one.
// A nil prev (no prior reading) is flat.
func Classify(prev *int64, next int64) Trend {
	switch {
	case prev == nil || next == *prev:
		return TrendFlat
	case next > *prev:
		return TrendUp
	default:
		return TrendDown
	}
}
