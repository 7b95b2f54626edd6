package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		got := Resolve("zh-TW")
		if got.Name != "Chinese (Traditional)" || got.Flag() != "\U0001F1F9\U0001F1FC" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("normalized match", func(t *testing.T) {
		got := Resolve("pt_br")
		if got.Native != "Português (Brasil)" || got.Flag() == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("base fallback keeps region", func(t *testing.T) {
		got := Resolve("fr-CA")
		if got.Name != "French" || got.Flag() != "\U0001F1E8\U0001F1E6" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("zz-ZZ")
		if got.Name != "zz-ZZ" || got.Flag() != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestFlagFromRegion(t *testing.T) {
	if got := FlagFromRegion("us"); got != "\U0001F1FA\U0001F1F8" {
		t.Fatalf("FlagFromRegion(us) = %q", got)
	}
	if got := FlagFromRegion("USA"); got != "" {
		t.Fatalf("FlagFromRegion(USA) = %q, want empty", got)
	}
	if got := FlagFromRegion("1A"); got != "" {
		t.Fatalf("FlagFromRegion(1A) = %q, want empty", got)
	}
}
