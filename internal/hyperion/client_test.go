package hyperion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != Path {
			t.Errorf("path = %q, want %q", r.URL.Path, Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "token abc" {
			t.Errorf("Authorization = %q, want %q", got, "token abc")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("invalid request body %q: %v", raw, err)
		}
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSend_Success(t *testing.T) {
	var (
		mu  sync.Mutex
		got map[string]any
	)
	srv, calls := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		mu.Lock()
		got = body
		mu.Unlock()
		w.Write([]byte(`{"command":"color","success":true,"tan":0}`))
	})

	c := NewClient(srv.URL, "abc", time.Second, 0)
	res := c.Send(context.Background(), NewColor(50, []int{255, 200, 150}))

	if !res.Succeeded {
		t.Fatalf("Succeeded = false, reason %q", res.Reason())
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if got["command"] != "color" {
		t.Errorf("command = %v", got["command"])
	}
	if got["priority"] != float64(50) {
		t.Errorf("priority = %v, want 50", got["priority"])
	}
	color, ok := got["color"].([]any)
	if !ok || len(color) != 3 || color[0] != float64(255) || color[1] != float64(200) || color[2] != float64(150) {
		t.Errorf("color = %v, want [255 200 150]", got["color"])
	}
	if _, ok := got["adjustment"]; ok {
		t.Error("color command must not carry adjustment")
	}
}

func TestSend_CommandShapes(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"adjustment", NewAdjustment(40), `{"command":"adjustment","adjustment":{"brightness":40}}`},
		{"clear", NewClear(0), `{"command":"clear","priority":0}`},
		{"effect", NewEffect("Rainbow", 50, "My Fancy App"), `{"command":"effect","priority":50,"effect":{"name":"Rainbow"},"origin":"My Fancy App"}`},
		{"color", NewColor(1, []int{1, 2, 3}), `{"command":"color","priority":1,"color":[1,2,3]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.cmd)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(raw) != tt.want {
				t.Errorf("Marshal() = %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestSend_ApplicationRejection(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"success_false", `{"success":false,"error":"Effect not found"}`},
		{"success_missing", `{"command":"effect"}`},
		{"not_json", `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
				w.Write([]byte(tt.body))
			})

			res := NewClient(srv.URL, "abc", time.Second, 0).Send(context.Background(), NewEffect("x", 50, "o"))
			if res.Succeeded {
				t.Fatal("Succeeded = true, want false")
			}
			if res.Reason() == "" {
				t.Error("Reason() is empty")
			}
		})
	}
}

func TestSend_NonSuccessStatus(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":true}`))
	})

	res := NewClient(srv.URL, "abc", time.Second, 0).Send(context.Background(), NewClear(50))
	if res.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	if !strings.Contains(res.Reason(), "401") {
		t.Errorf("Reason() = %q, want status code", res.Reason())
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("calls = %d, want exactly one attempt", n)
	}
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res := NewClient(addr, "abc", time.Second, 0).Send(context.Background(), NewClear(50))
	if res.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	if res.Err == nil {
		t.Error("Err = nil, want transport error")
	}
	var desc string
	if err := json.Unmarshal(res.Payload, &desc); err != nil || desc == "" {
		t.Errorf("Payload = %s, want JSON error description", res.Payload)
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	res := NewClient(srv.URL, "abc", 50*time.Millisecond, 0).Send(context.Background(), NewClear(50))
	if res.Succeeded {
		t.Fatal("Succeeded = true, want false on timeout")
	}
}

func TestNewClient_AddsScheme(t *testing.T) {
	c := NewClient("192.168.1.5:8090", "", 0, 10)
	if got := c.Endpoint(); got != "http://192.168.1.5:8090/json-rpc" {
		t.Errorf("Endpoint() = %q", got)
	}
}
