package testkit

import (
	"net/http/cookiejar"
	"testing"
)

// RunSuite runs the ordered steps in path against one cookie jar, so a
// login step's session carries into the steps after it. A failing step
// stops the suite.
func (k *Kit) RunSuite(t *testing.T, path string) {
	t.Helper()
	steps, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("testkit: cookie jar: %v", err)
	}

	for _, s := range steps {
		if !t.Run(s.Name, func(t *testing.T) {
			k.exec(t, s, jar)
		}) {
			return
		}
	}
}
