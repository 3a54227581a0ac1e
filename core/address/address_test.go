package address

import (
	"strings"
	"testing"

	"github.com/leofalp/ratescan/core/dom"
)

const (
	addrA = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	addrB = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	addrC = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

func parseRoot(t *testing.T, src string) dom.Node {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc.Root()
}

func firstElement(t *testing.T, root dom.Node, tag string) dom.Node {
	t.Helper()
	els := dom.Elements(root, 1, tag)
	if len(els) == 0 {
		t.Fatalf("No <%s> element found", tag)
	}
	return els[0]
}

func TestIsAddress(t *testing.T) {
	testCases := []struct {
		value string
		want  bool
	}{
		{addrA, true},
		{strings.ToLower(addrA), true},
		{"0X" + addrA[2:], false},
		{addrA[:41], false},
		{addrA + "0", false},
		{"pool-" + addrA, false},
		{"0x" + strings.Repeat("g", 40), false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := IsAddress(tc.value); got != tc.want {
			t.Errorf("IsAddress(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestFindAll_Surfaces(t *testing.T) {
	testCases := []struct {
		name string
		html string
		want []string
	}{
		{"id", `<div id="` + addrA + `"></div>`, []string{addrA}},
		{"data-address", `<div data-address="` + addrA + `"></div>`, []string{addrA}},
		{"data-contract", `<span data-contract="` + addrA + `"></span>`, []string{addrA}},
		{"data-token", `<span data-token="` + addrA + `"></span>`, []string{addrA}},
		{"data-asset", `<span data-asset="` + addrA + `"></span>`, []string{addrA}},
		{"class token", `<div class="asset ` + addrA + `"></div>`, []string{addrA}},
		{"href substring", `<a href="/pool/` + addrA + `/details">pool</a>`, []string{addrA}},
		{"href multiple", `<a href="/swap/` + addrA + `/` + addrB + `">swap</a>`, []string{addrA, addrB}},
		{"text", `<p>Token at ` + addrA + ` and ` + addrB + `.</p>`, []string{addrA, addrB}},
		{"input value", `<input value="` + addrA + `">`, []string{addrA}},
		{"button value", `<button value="` + addrA + `">copy</button>`, []string{addrA}},
		{"wrong length id", `<div id="0x1234abcd-prefix"></div>`, nil},
		{"id with suffix", `<div id="` + addrA + `-row"></div>`, nil},
		{"data attr with prefix", `<div data-address="addr:` + addrA + `"></div>`, nil},
		{"div value ignored", `<div value="` + addrA + `"></div>`, nil},
		{"nothing", `<p>No addresses here</p>`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FindAll(parseRoot(t, tc.html))
			if got.Len() != len(tc.want) {
				t.Fatalf("Expected %d addresses, got %v", len(tc.want), got.Sorted())
			}
			for _, w := range tc.want {
				if !got.Has(w) {
					t.Errorf("Expected %s in %v", w, got.Sorted())
				}
			}
		})
	}
}

func TestFindAll_Deduplicates(t *testing.T) {
	html := `<div id="` + addrA + `" data-address="` + addrA + `">` + addrA + `</div><a href="/t/` + addrA + `">x</a>`
	got := FindAll(parseRoot(t, html))
	if got.Len() != 1 {
		t.Errorf("Expected a single deduplicated address, got %v", got.Sorted())
	}
}

func TestFindAll_CaseSensitive(t *testing.T) {
	html := `<p>` + addrA + ` ` + strings.ToLower(addrA) + `</p>`
	if got := FindAll(parseRoot(t, html)); got.Len() != 2 {
		t.Errorf("Expected two case variants, got %v", got.Sorted())
	}
}

func TestFindAll_NilRoot(t *testing.T) {
	if got := FindAll(nil); got.Len() != 0 {
		t.Errorf("Expected empty set, got %v", got.Sorted())
	}
}

func TestFindIn_Precedence(t *testing.T) {
	testCases := []struct {
		name string
		html string
		want string
	}{
		{"id before data", `<div id="` + addrA + `" data-address="` + addrB + `"></div>`, addrA},
		{"data-address before data-contract", `<div data-contract="` + addrB + `" data-address="` + addrA + `"></div>`, addrA},
		{"href full match", `<div href="` + addrB + `"></div>`, addrB},
		{"attribute before class", `<div class="` + addrB + `" data-asset="` + addrA + `"></div>`, addrA},
		{"class before text", `<div class="` + addrA + `">` + addrB + `</div>`, addrA},
		{"text substring", `<div>contract: ` + addrC + ` (USDT)</div>`, addrC},
		{"text before descendants", `<div>` + addrC + `<span data-token="` + addrA + `"></span></div>`, addrC},
		{"descendant attribute", `<div><span><a href="/t/` + addrB + `/x" data-contract="` + addrB + `">go</a></span></div>`, addrB},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			el := firstElement(t, parseRoot(t, tc.html), "div")
			got, ok := FindIn(el)
			if !ok {
				t.Fatal("Expected an address")
			}
			if got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFindIn_HrefSubstringIsNotAFullMatch(t *testing.T) {
	el := firstElement(t, parseRoot(t, `<div><a href="/pool/`+addrA+`/details">pool</a></div>`), "div")
	if got, ok := FindIn(el); ok {
		t.Errorf("Expected no address from an embedded href, got %s", got)
	}
}

func TestFindIn_DescendantCap(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div id="root">`)
	for i := 0; i < 5; i++ {
		b.WriteString(`<span></span>`)
	}
	b.WriteString(`<span data-token="` + addrA + `"></span></div>`)
	root := parseRoot(t, b.String())
	el := firstElement(t, root, "div")

	if got, ok := FindIn(el); ok {
		t.Errorf("Expected the sixth descendant to be out of reach, got %s", got)
	}

	wide := NewLocator(6)
	if got, ok := wide.FindIn(el); !ok || got != addrA {
		t.Errorf("Expected %s with a cap of 6, got %q (found=%v)", addrA, got, ok)
	}
}

func TestFindIn_NonElement(t *testing.T) {
	if _, ok := FindIn(nil); ok {
		t.Error("Expected nothing for nil node")
	}
	root := parseRoot(t, `<p>`+addrA+`</p>`)
	if _, ok := FindIn(root); ok {
		t.Error("Expected nothing for the document node")
	}
}

func TestSet_Sorted(t *testing.T) {
	s := make(Set)
	s.Add(addrC, addrA, addrB, addrA)
	got := s.Sorted()
	if len(got) != 3 {
		t.Fatalf("Expected 3 addresses, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("Addresses not sorted: %v", got)
		}
	}
}
