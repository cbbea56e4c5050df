package web

import "testing"

type fakeLauncher struct {
	urls []string
}

func (f *fakeLauncher) Launch(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func TestSearchBuildsGoogleURL(t *testing.T) {
	l := &fakeLauncher{}
	o := newWithLauncher(l)

	if err := o.Search("what+is+python"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := "https://www.google.com/search?q=what+is+python"
	if len(l.urls) != 1 || l.urls[0] != want {
		t.Fatalf("expected launched URL %q, got %v", want, l.urls)
	}
}
