// Package webhunt provides offline forensic threat hunting over web
// server access logs: it parses combined-format log lines, tags requests
// against a catalog of attack and tool signatures, and ranks source
// addresses and endpoints by suspicion.
//
// Quick start:
//
//	result, err := webhunt.Analyze("/var/log/nginx/",
//	    webhunt.WithMinRequests(50),
//	    webhunt.WithTopN(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, addr := range result.TopAddresses {
//	    fmt.Println(addr.Address, addr.Score)
//	}
//
// The analysis is a pure batch computation: one call reads the input,
// produces a self-contained AnalysisResult, and holds no state afterward.
package webhunt
