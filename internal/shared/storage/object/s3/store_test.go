package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/call.wav", want: "user/call.wav"},
		{name: "simple prefix", prefix: "recordings", key: "user/call.wav", want: "recordings/user/call.wav"},
		{name: "prefix trailing slash", prefix: "recordings/", key: "user/call.wav", want: "recordings/user/call.wav"},
		{name: "prefix and key slashes", prefix: "/recordings/", key: "/user/call.wav", want: "recordings/user/call.wav"},
		{name: "nested prefix", prefix: "recordings/raw", key: "user/call.wav", want: "recordings/raw/user/call.wav"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
