package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/music"
	"golang.org/x/net/html/charset"
)

// DuckDuckGoURL is the HTML endpoint of DuckDuckGo.
const DuckDuckGoURL = "https://html.duckduckgo.com/html/"

const (
	maxSearchResults = 10
	maxUntrusted     = 3
	maxPages         = 5
	maxPageBytes     = 512 * 1024
	pageTimeout      = 12 * time.Second
)

var trustedDomains = []string{
	"lyricstranslate.com", "genius.com", "azlyrics.com", "songlyrics.com",
	"letras.mus.br", "lyrics.com", "altwall.net", "teksty-pesenok.ru",
	"teksti-pesen.com", "pesni.guru", "tekstipesen.com", "amalgama-lab.com",
	"911pesni.pro", "pesni-accordy.ru", "megalyrics.ru",
}

var skipDomains = []string{
	"youtube.com", "youtu.be", "vk.com", "facebook.com", "twitter.com", "x.com",
	"instagram.com", "tiktok.com", "wikipedia.org", "reddit.com", "spotify.com",
	"apple.com", "amazon.com", "deezer.com", "soundcloud.com", "music.yandex.ru",
}

var codeIndicators = []string{"function ", "var ", "const ", "document.", "window.", "gtag(", "fetch("}

var (
	lyricsIDRe  = regexp.MustCompile(`(?i)(lyrics|song.?text)`)
	blanksRe    = regexp.MustCompile(`[ \t]+`)
	lyricsClass = []string{"lyrics-body", "lyric-body", "song-text", "songtext", "lyrics_text", "text-lyrics"}
)

// lyricsContainers locate the element holding the lyrics, most specific first.
var lyricsContainers = []func(*goquery.Document) *goquery.Selection{
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.EqualFold(s.AttrOr("class", ""), "ltf")
		})
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find(`div[data-lyrics-container="true"]`)
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.EqualFold(s.AttrOr("id", ""), "song-body")
		})
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class := strings.ToLower(s.AttrOr("class", ""))
			return slices.ContainsFunc(lyricsClass, func(c string) bool { return strings.Contains(class, c) })
		})
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(s.AttrOr("class", "")), "lyrics")
		})
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.EqualFold(s.AttrOr("id", ""), "songLyricsDiv")
		})
	},
	func(d *goquery.Document) *goquery.Selection {
		return d.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return lyricsIDRe.MatchString(s.AttrOr("id", ""))
		})
	},
}

// WebSearchProvider finds lyrics pages through DuckDuckGo and scrapes them.
type WebSearchProvider struct {
	client    *httpclient.Client
	config    *config.Manager
	onReject  func(reason string)
	searchURL string
}

// NewWebSearchProvider creates a new web search provider. onReject, when set,
// is told why a scraped page failed validation.
func NewWebSearchProvider(client *httpclient.Client, cfg *config.Manager, onReject func(reason string), searchURL string) *WebSearchProvider {
	return &WebSearchProvider{client: client, config: cfg, onReject: onReject, searchURL: searchURL}
}

// validator is built from the running config so reloaded tolerances apply to the next fetch.
func (p *WebSearchProvider) validator() *lyrics.Validator {
	res := p.config.Get().Lyrics.Resolution
	v := lyrics.NewValidator(res.MaxOvershoot.Seconds(), res.MinCoverage)
	v.OnReject = p.onReject
	return v
}

func (p *WebSearchProvider) Fetch(ctx context.Context, q music.LyricsQuery) lyrics.FetchResult {
	validator := p.validator()
	var urls []string
	for _, query := range searchQueries(q.Artist, q.Title) {
		for _, u := range p.search(ctx, query) {
			if !slices.Contains(urls, u) {
				urls = append(urls, u)
			}
		}
	}

	for _, pageURL := range rankPages(urls) {
		if ctx.Err() != nil {
			break
		}
		domain := domainOf(pageURL)
		text, err := p.scrape(ctx, pageURL)
		if err != nil {
			slog.Debug("Web search page fetch failed", "domain", domain, "error", err)
			continue
		}
		if text == "" || !validator.Validate(text, q.DurationSeconds, q.Artist, q.Title) {
			continue
		}
		slog.Info("Web search found lyrics", "domain", domain, "chars", len(text))
		return lyrics.Found(text, "web-"+domain)
	}
	return lyrics.NotFound()
}

// searchQueries phrases the search in the script of the query first.
func searchQueries(artist, title string) []string {
	if hasCyrillic(artist + " " + title) {
		return []string{artist + " - " + title + " текст", artist + " " + title + " lyrics"}
	}
	return []string{artist + " - " + title + " lyrics", artist + " " + title + " текст песни"}
}

func hasCyrillic(text string) bool {
	return strings.ContainsFunc(text, func(r rune) bool { return unicode.Is(unicode.Cyrillic, r) })
}

// search returns the result links of a DuckDuckGo query, skipping social and streaming sites.
func (p *WebSearchProvider) search(ctx context.Context, query string) []string {
	resp, err := p.client.Get(ctx, p.searchURL+"?"+url.Values{"q": {query}}.Encode(),
		httpclient.WithTimeout(p.config.ProviderTimeout(config.ProviderWebSearch, 15*time.Second)),
		httpclient.WithHeader("User-Agent", p.config.Get().HTTP.BrowserUserAgent),
	)
	if err != nil {
		slog.Warn("DuckDuckGo search failed", "query", query, "error", err)
		return nil
	}
	if !resp.OK() {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		slog.Warn("DuckDuckGo returned unparsable HTML", "query", query, "error", err)
		return nil
	}

	var urls []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		target := resultTarget(s.AttrOr("href", ""))
		if target == "" || matchesDomain(domainOf(target), skipDomains) {
			return true
		}
		urls = append(urls, target)
		return len(urls) < maxSearchResults
	})
	return urls
}

// resultTarget extracts the destination of a DuckDuckGo redirect link.
func resultTarget(href string) string {
	if !strings.Contains(href, "uddg=") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uddg")
}

// rankPages puts every trusted lyrics site first, then a few unknown ones.
func rankPages(urls []string) []string {
	var trusted, untrusted []string
	for _, u := range urls {
		if matchesDomain(domainOf(u), trustedDomains) {
			trusted = append(trusted, u)
		} else {
			untrusted = append(untrusted, u)
		}
	}
	ordered := append(trusted, untrusted[:min(len(untrusted), maxUntrusted)]...)
	return ordered[:min(len(ordered), maxPages)]
}

func matchesDomain(domain string, list []string) bool {
	return slices.ContainsFunc(list, func(d string) bool {
		return domain == d || strings.HasSuffix(domain, "."+d)
	})
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// scrape downloads a page and extracts its lyrics, returning "" when none were recognized.
func (p *WebSearchProvider) scrape(ctx context.Context, pageURL string) (string, error) {
	resp, err := p.client.Get(ctx, pageURL,
		httpclient.WithTimeout(pageTimeout),
		httpclient.WithMaxBytes(maxPageBytes),
		httpclient.WithHeader("User-Agent", p.config.Get().HTTP.BrowserUserAgent),
	)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.Truncated {
		return "", fmt.Errorf("page larger than %d bytes", maxPageBytes)
	}

	body, err := charset.NewReader(bytes.NewReader(resp.Body), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to detect encoding: %w", err)
	}
	return ExtractLyrics(body)
}

// ExtractLyrics finds the lyrics block of an HTML page.
func ExtractLyrics(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	for _, locate := range lyricsContainers {
		sel := locate(doc)
		if sel.Length() == 0 {
			continue
		}
		if text := cleanText(sel); looksLikeLyrics(text) {
			return text, nil
		}
	}
	return "", nil
}

// cleanText renders the selection as text, one line per <br> or block element.
func cleanText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		s.Contents().Each(textWriter(&b))
		b.WriteByte('\n')
	})

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(blanksRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func textWriter(b *strings.Builder) func(int, *goquery.Selection) {
	return func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "br":
			b.WriteByte('\n')
		case "div", "p", "li":
			s.Contents().Each(textWriter(b))
			b.WriteByte('\n')
		case "script", "style", "#comment":
		case "#text":
			b.WriteString(s.Text())
		default:
			s.Contents().Each(textWriter(b))
		}
	}
}

// looksLikeLyrics rejects short fragments and blocks of inline script.
func looksLikeLyrics(text string) bool {
	if utf8.RuneCountInString(text) < 50 || strings.Count(text, "\n")+1 < 3 {
		return false
	}
	head := text[:min(len(text), 500)]
	code := 0
	for _, ind := range codeIndicators {
		if strings.Contains(head, ind) {
			code++
		}
	}
	return code < 2
}

func (p *WebSearchProvider) Name() string    { return config.ProviderWebSearch }
func (p *WebSearchProvider) IsEnabled() bool { return p.config.IsProviderEnabled(config.ProviderWebSearch) }
