package render

type HomePageData struct {
	AuthorizeURL string
}

type AuthorizedPageData struct {
	Username string
}
