package category

import "testing"

func TestFromBase64PrefixResolvesEveryCategory(t *testing.T) {
	cases := []struct {
		prefix string
		want   Category
	}{
		{Access.Base64Prefix(), Access},
		{Refresh.Base64Prefix(), Refresh},
		{Email.Base64Prefix(), Email},
		{Offline.Base64Prefix(), Offline},
	}

	for _, tc := range cases {
		got, err := FromBase64Prefix(tc.prefix + "restofbody")
		if err != nil {
			t.Fatalf("FromBase64Prefix(%q): %v", tc.prefix, err)
		}
		if got.Name() != tc.want.Name() {
			t.Fatalf("FromBase64Prefix(%q) = %q, want %q", tc.prefix, got.Name(), tc.want.Name())
		}
	}
}

func TestFromBase64PrefixUnrecognized(t *testing.T) {
	if _, err := FromBase64Prefix("zzrestofbody"); err == nil {
		t.Fatal("expected error for unrecognized prefix")
	}
}

func TestFromBase64PrefixTooShort(t *testing.T) {
	if _, err := FromBase64Prefix("Y"); err == nil {
		t.Fatal("expected error for too-short input")
	}
}

func TestCarriesExpiration(t *testing.T) {
	if !Access.CarriesExpiration() {
		t.Fatal("Access should carry expiration")
	}
	for _, c := range []Category{Refresh, Email, Offline} {
		if c.CarriesExpiration() {
			t.Fatalf("%s should not carry expiration", c.Name())
		}
	}
}

func TestAllReturnsFourCategories(t *testing.T) {
	if len(All()) != 4 {
		t.Fatalf("All() returned %d categories, want 4", len(All()))
	}
}
