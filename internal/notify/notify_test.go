package notify

import (
	"testing"
	"time"
)

func TestShowAndExpire(t *testing.T) {
	b := New(0)
	if b.Duration() != DefaultDuration {
		t.Fatalf("Duration() = %v", b.Duration())
	}
	now := time.Unix(1000, 0)
	token := b.Show(ImageCopied, now)
	if !b.Visible(ImageCopied) {
		t.Fatal("banner should be visible after Show")
	}
	if want := now.Add(1500 * time.Millisecond); !b.Deadline(ImageCopied).Equal(want) {
		t.Fatalf("Deadline() = %v, want %v", b.Deadline(ImageCopied), want)
	}
	if b.Visible(ImageSaved) || b.Visible(LinkCopied) {
		t.Fatal("other banners must stay hidden")
	}
	if !b.Expire(token) {
		t.Fatal("current token should hide the banner")
	}
	if b.Visible(ImageCopied) || !b.Deadline(ImageCopied).IsZero() {
		t.Fatal("banner should be hidden after Expire")
	}
	if b.Expire(token) {
		t.Fatal("expiring twice should be a no-op")
	}
}

func TestReshowRearmsTimer(t *testing.T) {
	b := New(time.Second)
	start := time.Unix(0, 0)
	first := b.Show(LinkCopied, start)
	second := b.Show(LinkCopied, start.Add(800*time.Millisecond))

	if b.Expire(first) {
		t.Fatal("stale timer must not hide a re-armed banner")
	}
	if !b.Visible(LinkCopied) {
		t.Fatal("banner should still be visible")
	}
	if want := start.Add(1800 * time.Millisecond); !b.Deadline(LinkCopied).Equal(want) {
		t.Fatalf("deadline not re-armed: %v", b.Deadline(LinkCopied))
	}
	if !b.Expire(second) {
		t.Fatal("latest timer should hide the banner")
	}
}

func TestDismissInvalidatesTimers(t *testing.T) {
	b := New(time.Second)
	token := b.Show(ImageSaved, time.Now())
	b.Dismiss(ImageSaved)
	if b.Visible(ImageSaved) {
		t.Fatal("Dismiss should hide")
	}
	next := b.Show(ImageSaved, time.Now())
	if b.Expire(token) {
		t.Fatal("token from before Dismiss must be stale")
	}
	if !b.Expire(next) {
		t.Fatal("new token should expire")
	}
}

func TestActiveOrder(t *testing.T) {
	b := New(time.Second)
	b.Show(ImageSaved, time.Now())
	b.Show(LinkCopied, time.Now())
	active := b.Active()
	if len(active) != 2 || active[0] != LinkCopied || active[1] != ImageSaved {
		t.Fatalf("Active() = %v", active)
	}
	if ImageCopied.Message() != "Image Copied" {
		t.Fatalf("Message() = %q", ImageCopied.Message())
	}
}
