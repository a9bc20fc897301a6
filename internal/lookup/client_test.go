package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, func()) {
	srv := httptest.NewServer(handler)
	// The fake service ignores the query, so the base URL needs no
	// parameter suffix.
	return NewClient(srv.URL+"/?num=", 2*time.Second), srv.Close
}

func TestLookupEnvelope(t *testing.T) {
	c, closeFn := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": [{"name": "Test User", "mobile": "9798423774", "Api_owner": "@someone"}]}`))
	})
	defer closeFn()

	res, err := c.Lookup(context.Background(), "9798423774")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false, want true")
	}
	if res.Fields["name"] != "Test User" || res.Fields["mobile"] != "9798423774" {
		t.Errorf("fields = %v", res.Fields)
	}
	if _, ok := res.Fields["Api_owner"]; ok {
		t.Error("attribution field not stripped")
	}
}

func TestLookupFlatObject(t *testing.T) {
	c, closeFn := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "  Test User  ", "address": "", "age": 30, "extra": null}`))
	})
	defer closeFn()

	res, err := c.Lookup(context.Background(), "9798423774")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false, want true")
	}
	if res.Fields["name"] != "Test User" {
		t.Errorf("name = %q, want trimmed value", res.Fields["name"])
	}
	if res.Fields["age"] != "30" {
		t.Errorf("age = %q, want \"30\"", res.Fields["age"])
	}
	if _, ok := res.Fields["address"]; ok {
		t.Error("empty field kept")
	}
	if _, ok := res.Fields["extra"]; ok {
		t.Error("null field kept")
	}
}

func TestLookupEmptyResult(t *testing.T) {
	cases := map[string]string{
		"empty envelope":   `{"result": []}`,
		"empty object":     `{}`,
		"attribution only": `{"Api_owner": "@someone"}`,
		"blank values":     `{"name": "", "address": "   "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, closeFn := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			defer closeFn()

			res, err := c.Lookup(context.Background(), "9798423774")
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if res.Found {
				t.Errorf("Found = true for %s, fields %v", name, res.Fields)
			}
		})
	}
}

func TestLookupTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/?num=", 20*time.Millisecond)
	_, err := c.Lookup(context.Background(), "9798423774")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Lookup = %v, want ErrTimeout", err)
	}
}

func TestLookupTransportErrors(t *testing.T) {
	t.Run("server status", func(t *testing.T) {
		c, closeFn := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer closeFn()

		_, err := c.Lookup(context.Background(), "9798423774")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("Lookup = %v, want ErrTransport", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		c := NewClient(url+"/?num=", time.Second)
		_, err := c.Lookup(context.Background(), "9798423774")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("Lookup = %v, want ErrTransport", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		c, closeFn := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})
		defer closeFn()

		_, err := c.Lookup(context.Background(), "9798423774")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("Lookup = %v, want ErrTransport", err)
		}
	})
}

func TestResultKeysSorted(t *testing.T) {
	r := &Result{Found: true, Fields: map[string]string{"c": "3", "a": "1", "b": "2"}}
	keys := r.Keys()
	for i, want := range []string{"a", "b", "c"} {
		if keys[i] != want {
			t.Errorf("keys[%d] = %s, want %s", i, keys[i], want)
		}
	}
}
