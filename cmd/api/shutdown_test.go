package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestServe_SignalDrainsAndClosesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var closed []string
	rec := func(name string, err error) closer {
		return closer{name: name, close: func() error { closed = append(closed, name); return err }}
	}

	done := make(chan error, 1)
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	go func() {
		done <- serve(ctx, srv, time.Second, rec("nats", nil), rec("redis", errors.New("already closed")), rec("mysql", nil))
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	if len(closed) != 3 || closed[0] != "nats" || closed[1] != "redis" || closed[2] != "mysql" {
		t.Fatalf("closed=%v", closed)
	}
}

func TestServe_StartupFailureStillCloses(t *testing.T) {
	var closedNATS bool
	srv := &http.Server{Addr: "not-an-address", Handler: http.NotFoundHandler()}
	err := serve(context.Background(), srv, time.Second, closer{name: "nats", close: func() error { closedNATS = true; return nil }})
	if err == nil {
		t.Fatal("expected listen error")
	}
	if !closedNATS {
		t.Fatal("publisher must be closed on startup failure")
	}
}
