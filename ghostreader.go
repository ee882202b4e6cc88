// Package ghostreader provides a translation lookup backend that sits in
// front of a remote translation service.
//
// Translations are served from a locally memoized copy of the remote
// translation set. Keys the copy does not know are resolved through a
// fallback source, and those fallback hits are collected and reported back to
// the remote service so the authoritative source learns about its gaps. Two
// background loops keep the copy fresh and push the collected reports.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/ghostreader"
//	    "github.com/ZaguanLabs/ghostreader/client"
//	    "github.com/ZaguanLabs/ghostreader/fallback"
//	)
//
//	func main() {
//	    c := client.NewHTTPClient(client.HTTPConfig{
//	        BaseURL: "https://translations.example.com/api",
//	        APIKey:  os.Getenv("GHOSTREADER_API_KEY"),
//	    })
//
//	    fb, err := fallback.NewBundle("en")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := fb.LoadDir("locales"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    b, err := ghostreader.New(c, fb,
//	        ghostreader.WithRetrievalInterval(30*time.Second),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ctx := context.Background()
//	    b.Start(ctx)
//	    defer b.Close()
//
//	    s, err := b.Translate(ctx, "de", "this.is.a.test", nil)
//	    ...
//	}
package ghostreader
