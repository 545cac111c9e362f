package source

// Авиационные ленты, которые опрашиваются по умолчанию
var DefaultFeeds = []string{
	"https://www.airporthaber2.com/rss/",
	"https://haber.aero/feed/",
	"https://havasosyalmedya.com/feed/",
	"https://www.airlinehaber.com/feed/",
	"https://www.aeroroutes.com/?format=rss",
	"https://tolgaozbek.com/feed/",
	"https://airlinegeeks.com/feed/",
	"https://www.flyertalk.com/feed",
	"https://worldairlinenews.com/feed/",
	"https://www.flightradar24.com/blog/feed/",
	"https://www.sabre.com/feed/",
	"https://www.cirium.com/thoughtcloud/feed/",
	"https://www.aerotime.aero/category/airlines/feed",
	"https://www.radarbox.com/blog/feed",
	"https://simpleflying.com/feed/",
	"https://theaviationist.com/feed/",
	"https://feeds.feedburner.com/Ex-yuAviationNews",
	"https://samchui.com/feed/",
}
