package blacklist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/nao1215/logtriage/internal/model"
)

// ErrUnknownCharset is returned when a forced charset label is not a known
// WHATWG encoding name.
var ErrUnknownCharset = errors.New("unknown feed charset")

// options holds Extract settings.
type options struct {
	charset string
}

// Option configures Extract.
type Option func(*options)

// WithCharset forces the feed encoding instead of detecting it.
// The label is any WHATWG encoding name or alias ("utf-8", "latin1", "windows-1251").
// An empty label keeps detection enabled.
func WithCharset(label string) Option {
	return func(o *options) {
		o.charset = strings.TrimSpace(label)
	}
}

// Extract parses an HTML document and returns the set of non-empty anchor texts.
func Extract(r io.Reader, opts ...Option) (*model.DomainSet, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	decoded, err := decode(r, o.charset)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to read threat feed: %w", err)
	}

	domains := model.NewDomainSet()
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			domains.Add(text)
		}
	})

	return domains, nil
}

// ExtractFile opens path and extracts it. A missing file is an error.
func ExtractFile(path string, opts ...Option) (*model.DomainSet, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from the operator's configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open threat feed: %w", err)
	}
	defer f.Close()

	return Extract(f, opts...)
}

// decode wraps r so the HTML parser always sees UTF-8.
// Without a forced label the encoding comes from the BOM, a <meta charset>
// declaration, or UTF-8 validity of the first kilobyte, in that order.
func decode(r io.Reader, label string) (io.Reader, error) {
	if label == "" {
		decoded, err := charset.NewReader(r, "text/html")
		if err != nil {
			return nil, fmt.Errorf("failed to detect threat feed charset: %w", err)
		}
		return decoded, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, label)
	}
	return enc.NewDecoder().Reader(r), nil
}
