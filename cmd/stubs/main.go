// Command stubs serves local stand-ins for every upstream the dashboard
// talks to, seeded with plausible prices. Point a config file's base URLs at
// it to run the whole pipeline offline.
package main

import (
	"flag"
	"log"
	"net/http"

	"sgbcarry/internal/stubs"
)

func main() {
	addr := flag.String("addr", ":8091", "listen address")
	flag.Parse()

	nse := stubs.NewFeedServer()
	nse.Set("SGA09", stubs.FeedQuote{Offer: 0, Bid: 0, Last: 7412.00}) // market closed: LTP only
	nse.Set("SGD14", stubs.FeedQuote{Offer: 7521.50, Bid: 7498.00, Last: 7510.05})
	nse.Set("SGF19", stubs.FeedQuote{Offer: 7689.00, Bid: 7655.00, Last: 7660.00})

	mcx := stubs.NewFeedServer()
	mcx.Set("GGN", stubs.FeedQuote{Offer: 62180.00, Bid: 62040.00, Last: 62110.00})

	page := stubs.NewPageServer("span_price_wrap")
	page.Set("goldguinea", "₹ 62,110.00")

	ref := stubs.NewFeedServer()
	ref.Set("XAU", stubs.FeedQuote{Last: 2345.60})
	ref.Set("USDINR", stubs.FeedQuote{Last: 83.25})

	hist := stubs.NewHistoryServer()
	hist.Set("GOLDBEES", ramp(95, 0.05, 260))
	hist.Set("NIFTYBEES", ramp(240, 0.02, 260))
	hist.Set("JUNIORBEES", ramp(610, -0.01, 260))

	mux := http.NewServeMux()
	mux.Handle("/pricefeed/nse/equitycash/", http.StripPrefix("/pricefeed/nse/equitycash", nse))
	mux.Handle("/pricefeed/mcx/commodityfuture/", http.StripPrefix("/pricefeed/mcx/commodityfuture", mcx))
	mux.Handle("/commodity/", http.StripPrefix("/commodity", page))
	mux.Handle("/pricefeed/global/spot/", http.StripPrefix("/pricefeed/global/spot", ref))
	mux.Handle("/techCharts/history/", http.StripPrefix("/techCharts/history", hist))

	log.Printf("stub upstreams listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

// ramp builds a drifting daily close series for the history stub.
func ramp(start, dailyDrift float64, days int) []float64 {
	out := make([]float64, days)
	v := start
	for i := range out {
		out[i] = v
		v += dailyDrift
	}
	return out
}
