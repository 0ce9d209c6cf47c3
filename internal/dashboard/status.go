package dashboard

import (
	"log"
	"time"
	_ "time/tzdata"

	"github.com/Stormmysea/stock-website/internal/model"
)

var newYork = loadNewYork()

func loadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Printf("[WARN] load America/New_York: %v, using fixed EST", err)
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// MarketStatusAt reports the regular session state at t: open 09:30 to
// 16:00 New York time, Monday to Friday. Exchange holidays are not modelled.
func MarketStatusAt(t time.Time) model.MarketStatus {
	et := t.In(newYork)
	minutes := et.Hour()*60 + et.Minute()

	st := model.MarketStatus{Time: et}
	switch {
	case et.Weekday() == time.Saturday || et.Weekday() == time.Sunday:
		st.Label = "MARKET CLOSED"
		st.Session = "Weekend"
	case minutes >= 9*60+30 && minutes < 16*60:
		st.Open = true
		st.Label = "MARKET OPEN"
		st.Session = "Regular Trading Hours"
	default:
		st.Label = "MARKET CLOSED"
		st.Session = "After Hours / Pre-Market"
	}
	return st
}
