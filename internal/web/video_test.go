package web

import "testing"

func TestYoutubeIDExtraction(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"", ""},
		{"not a url", "not a url"},
	}
	for _, tc := range cases {
		if got := youtubeID(tc.in); got != tc.want {
			t.Errorf("youtubeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
