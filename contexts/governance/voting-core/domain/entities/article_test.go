package entities

import "testing"

func TestRomanNumeral(t *testing.T) {
	cases := map[int]string{
		1: "I", 4: "IV", 9: "IX", 14: "XIV", 40: "XL", 90: "XC",
		400: "CD", 1994: "MCMXCIV", 2026: "MMXXVI", 0: "", -3: "",
	}
	for number, want := range cases {
		if got := RomanNumeral(number); got != want {
			t.Fatalf("RomanNumeral(%d) = %q, want %q", number, got, want)
		}
	}
}

func TestDesignationOnlyForNumberedConstitutionalArticles(t *testing.T) {
	article := Article{Type: ArticleTypeConstitutional, OfficialNumber: 12}
	if got := article.Designation(); got != "Article XII of the constitution" {
		t.Fatalf("unexpected designation %q", got)
	}
	if (Article{Type: ArticleTypeLaw, OfficialNumber: 12}).Designation() != "" {
		t.Fatalf("laws have no constitutional designation")
	}
	if (Article{Type: ArticleTypeConstitutional}).Designation() != "" {
		t.Fatalf("unnumbered articles have no designation")
	}
}
