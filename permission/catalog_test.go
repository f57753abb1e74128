package permission

import "testing"

func TestCatalogSize(t *testing.T) {
	// 5 project + 8 team + 4 column + 5 card + 3 comment + 3 label + 2 attachment
	const want = 30
	if got := len(Catalog()); got != want {
		t.Errorf("catalog has %d permissions, want %d", got, want)
	}
}

func TestInCatalog(t *testing.T) {
	if !InCatalog(CardMove) {
		t.Error("CardMove missing from catalog")
	}
	if InCatalog(Permission{Action: ActionMove, Resource: ResourceTeam}) {
		t.Error("team:move should not exist")
	}
	if InCatalog(Permission{}) {
		t.Error("zero permission should not be in catalog")
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	before := len(Catalog())
	list := Catalog()
	_ = append(list, Permission{Action: "bogus", Resource: "bogus"})
	if len(Catalog()) != before {
		t.Error("Catalog() exposed internal state")
	}
}
