// Package coursedex provides a resilient Go client for the coursedex
// admin API: search, index maintenance, backups, assistant chat and
// content uploads.
//
// Every request runs with a per-attempt timeout, a client-wide circuit
// breaker and automatic retries for idempotent calls. In-flight requests
// can be superseded by key: issuing a new request with the same key
// cancels the previous one.
//
//	client, _ := coursedex.New("http://localhost:8080",
//	    coursedex.WithAPIKey("secret"),
//	    coursedex.WithTimeout(10*time.Second),
//	)
//	res, _ := client.Search().Query(ctx, "course", coursedex.SearchRequest{
//	    Query: "golang basics",
//	    Limit: 20,
//	})
//
//	ctx = coursedex.WithRequestKey(ctx, "admin-search")
//	res, _ = client.Search().Query(ctx, "course", req) // cancels the previous admin-search
package coursedex
