package keys

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var baseKeyRE = regexp.MustCompile(`^product:list:[0-9a-f]{16}$`)

func TestHashKnownVectors(t *testing.T) {
	require.Equal(t, "ef46db3751d8e999", Hash(""))
	require.Equal(t, "44bc2cf5ad770999", Hash("abc"))
}

func TestBuildBaseKeyIsDeterministic(t *testing.T) {
	build := func() string {
		sig := NewSignature().
			Int("page", 1).
			Int("size", 5).
			Str("sort", "").
			Bool("desc", false).
			Fold("name", "").
			Fold("category", "")
		return BuildBaseKey("product:list", sig)
	}

	first := build()
	require.Regexp(t, baseKeyRE, first)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, build())
	}
	// stable across processes: pinned value of xxhash64 over the signature text
	require.Equal(t, "product:list:7994b746b94d4a87", first)
}

func TestSignatureCanonicalization(t *testing.T) {
	a := NewSignature().Str("sort", "  Name ").Fold("name", "  iPhone ")
	b := NewSignature().Str("sort", "Name").Fold("name", "IPHONE")
	require.Equal(t, "sort=Name|name=iphone", a.String())
	require.Equal(t, a.String(), b.String())

	// Str keeps case
	c := NewSignature().Str("sort", "name")
	require.NotEqual(t, NewSignature().Str("sort", "Name").String(), c.String())
}

func TestSignatureEscapesDelimiters(t *testing.T) {
	// without escaping both would render "name=a|size=1"
	injected := NewSignature().Str("name", "a|size=1")
	honest := NewSignature().Str("name", "a").Int("size", 1)
	require.NotEqual(t, injected.String(), honest.String())

	lists := NewSignature().Strings("tags", []string{"a,b"})
	split := NewSignature().Strings("tags", []string{"a", "b"})
	require.NotEqual(t, lists.String(), split.String())
	require.Equal(t, "tags=a,b", split.String())
}

func TestSignatureFieldOrderMatters(t *testing.T) {
	a := NewSignature().Int("page", 1).Int("size", 5)
	b := NewSignature().Int("size", 5).Int("page", 1)
	require.NotEqual(t, Hash(a.String()), Hash(b.String()))
}

func TestComposeKey(t *testing.T) {
	base := "product:list:7994b746b94d4a87"

	cases := []struct {
		name     string
		versions []ScopeVersion
		want     string
	}{
		{"no scopes", nil, base + ":v0"},
		{
			"single scope",
			[]ScopeVersion{{Scope: "product:list:ver", Version: 0}},
			base + ":product_list_ver-v0",
		},
		{
			"ordered scopes",
			[]ScopeVersion{
				{Scope: "product:list:ver", Version: 3},
				{Scope: "product:list:ver:category:apple", Version: 12},
			},
			base + ":product_list_ver-v3:product_list_ver_category_apple-v12",
		},
		{
			"blank scope",
			[]ScopeVersion{{Scope: "  ", Version: 1}},
			base + ":scope-v1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComposeKey(base, tc.versions))
		})
	}
}

func TestComposeKeyChangesWithVersion(t *testing.T) {
	base := "t:0000000000000000"
	before := ComposeKey(base, []ScopeVersion{{"a", 1}, {"b", 7}})
	after := ComposeKey(base, []ScopeVersion{{"a", 1}, {"b", 8}})
	require.NotEqual(t, before, after)
}

func TestComposeKeyScopeOrderMatters(t *testing.T) {
	base := "t:0000000000000000"
	ab := ComposeKey(base, []ScopeVersion{{"a", 1}, {"b", 1}})
	ba := ComposeKey(base, []ScopeVersion{{"b", 1}, {"a", 1}})
	require.NotEqual(t, ab, ba)
}

func TestSanitizeScope(t *testing.T) {
	require.Equal(t, "scope", SanitizeScope(""))
	require.Equal(t, "scope", SanitizeScope("\t"))
	require.Equal(t, "a_b_c", SanitizeScope("a:b:c"))
	require.Equal(t, "plain", SanitizeScope("plain"))
}

func TestNewScopesKeepsOrder(t *testing.T) {
	s := NewScopes("z", "a", "m")
	require.Equal(t, Scopes{"z", "a", "m"}, s)
}

func TestNamespace(t *testing.T) {
	for in, want := range map[string]string{
		"":        "app:",
		"  ":      "app:",
		"shop":    "shop:",
		" shop: ": "shop:",
	} {
		require.Equal(t, want, Namespace(in), "Namespace(%q)", in)
	}
}
