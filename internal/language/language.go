// Package language exposes the ISO 639-1 language catalog offered to clients
// as analysis output languages. Names come from CLDR via golang.org/x/text.
package language

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultCode is the language preselected by clients.
const DefaultCode = "en"

type Entry struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

var codes = strings.Fields(`
aa ab ae af ak am an ar as av ay az ba be bg bi bm bn bo br bs ca ce ch co cr
cs cu cv cy da de dv dz ee el en eo es et eu fa ff fi fj fo fr fy ga gd gl gn
gu gv ha he hi ho hr ht hu hy hz ia id ie ig ii ik io is it iu ja jv ka kg ki
kj kk kl km kn ko kr ks ku kv kw ky la lb lg li ln lo lt lu lv mg mh mi mk ml
mn mr ms mt my na nb nd ne ng nl nn no nr nv ny oc oj om or os pa pi pl ps pt
qu rm rn ro ru rw sa sc sd se sg si sk sl sm sn so sq sr ss st su sv sw ta te
tg th ti tk tl tn to tr ts tt tw ty ug uk ur uz ve vi vo wa wo xh yi yo za zh
zu
`)

var (
	catalogOnce sync.Once
	catalog     []Entry
	byCode      map[string]Entry
)

// Catalog returns every known language sorted by English name. The slice is
// shared; callers must not modify it.
func Catalog() []Entry {
	catalogOnce.Do(build)
	return catalog
}

// Lookup finds an entry by ISO code or by English or native name, ignoring case.
func Lookup(query string) (Entry, bool) {
	catalogOnce.Do(build)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Entry{}, false
	}
	if e, ok := byCode[q]; ok {
		return e, true
	}
	for _, e := range catalog {
		if strings.ToLower(e.Name) == q || strings.ToLower(e.NativeName) == q {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve maps a code or name to the English name used in prompts. Unknown
// values are returned trimmed and unchanged: the pipeline accepts free text.
func Resolve(value string) string {
	if e, ok := Lookup(value); ok {
		return e.Name
	}
	return strings.TrimSpace(value)
}

func build() {
	names := display.English.Languages()

	catalog = make([]Entry, 0, len(codes))
	byCode = make(map[string]Entry, len(codes))
	for _, code := range codes {
		tag := language.Make(code)
		name := names.Name(tag)
		if name == "" {
			continue
		}
		native := display.Self.Name(tag)
		if native == "" {
			native = name
		}
		e := Entry{Code: code, Name: name, NativeName: native}
		catalog = append(catalog, e)
		byCode[code] = e
	}

	sort.Slice(catalog, func(i, j int) bool {
		return catalog[i].Name < catalog[j].Name
	})
}
