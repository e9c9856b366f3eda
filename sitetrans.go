// Package sitetrans translates directories of static HTML pages.
//
// Pages are parsed into a document tree, their human-readable text and
// translatable attributes are sent in batches to a translation provider
// (DeepL, OpenAI, LibreTranslate) and written back into the same tree
// positions. A ledger records which (page, language) pairs are up to date so
// repeated runs only translate what changed.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/sitetrans"
//	    "github.com/ZaguanLabs/sitetrans/cache"
//	    "github.com/ZaguanLabs/sitetrans/processor"
//	    "github.com/ZaguanLabs/sitetrans/provider"
//	)
//
//	func main() {
//	    p := provider.NewDeepLProvider(provider.DeepLConfig{
//	        APIKey: os.Getenv("DEEPL_API_KEY"),
//	    })
//
//	    t := sitetrans.NewTranslator("fr", p,
//	        sitetrans.WithCache(cache.NewInMemoryCache(0)),
//	        sitetrans.WithProcessor(processor.NewHTMLProcessor()),
//	    )
//
//	    result, err := t.ProcessHTML(context.Background(), "<p>Hello World</p>")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content) // ...<p>Bonjour le monde</p>...
//	}
package sitetrans
