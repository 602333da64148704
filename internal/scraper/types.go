package scraper

// Candidate: релевантная ссылка, найденная на странице источника.
// Title всегда непустой, URL всегда абсолютный http(s).
type Candidate struct {
	Title string
	URL   string
}

// Item: впервые увиденная ссылка вместе с именем источника
type Item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}
