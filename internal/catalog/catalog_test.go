package catalog

import "testing"

func TestLookup(t *testing.T) {
	c := Default()

	app, ok := c.Lookup("notes")
	if !ok {
		t.Fatal("Lookup(notes): not found")
	}
	if app.Name != "Notes" {
		t.Fatalf("app.Name = %q, want %q", app.Name, "Notes")
	}

	if _, ok := c.Lookup("does-not-exist"); ok {
		t.Fatal("Lookup(does-not-exist): expected miss")
	}
	if _, ok := c.Lookup(""); ok {
		t.Fatal("Lookup(\"\"): expected miss")
	}
}

func TestDisplayName_FallsBackToID(t *testing.T) {
	c := Default()
	if got := c.DisplayName("notes"); got != "Notes" {
		t.Fatalf("DisplayName(notes) = %q, want Notes", got)
	}
	if got := c.DisplayName("mystery"); got != "mystery" {
		t.Fatalf("DisplayName(mystery) = %q, want mystery", got)
	}
}

func TestFilter(t *testing.T) {
	c := Default()

	if got := c.Filter(""); len(got) != c.Len() {
		t.Fatalf("Filter(\"\") len = %d, want %d", len(got), c.Len())
	}

	got := c.Filter("calc")
	if len(got) == 0 || got[0].ID != "calculator" {
		t.Fatalf("Filter(calc) = %+v, want calculator first", got)
	}

	if got := c.Filter("zzzzqq"); len(got) != 0 {
		t.Fatalf("Filter(zzzzqq) len = %d, want 0", len(got))
	}
}

func TestApps_IsACopy(t *testing.T) {
	c := Default()
	apps := c.Apps()
	apps[0].ID = "mutated"
	if c.Apps()[0].ID == "mutated" {
		t.Fatal("Apps aliases catalog memory")
	}
}
