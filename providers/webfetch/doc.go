// Package webfetch loads a web page and converts its HTML to Markdown, so a
// landing page or a hosted deck can be analysed as pitch content.
//
// Partial URLs ("example.com") are completed with "https://". Redirects are
// followed up to ten times and the body is capped at [MaxBodySize].
//
//	page, err := webfetch.New().Fetch(ctx, "example.com/pitch")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(page.Markdown)
package webfetch
