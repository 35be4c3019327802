package media

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Descriptor
	}{
		{
			name:  "canonical watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  &Descriptor{ID: "dQw4w9WgXcQ", Platform: PlatformVideo},
		},
		{
			name:  "short link",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  &Descriptor{ID: "dQw4w9WgXcQ", Platform: PlatformVideo},
		},
		{
			name:  "watch URL with playlist param",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123def456",
			want: &Descriptor{
				ID:           "dQw4w9WgXcQ",
				Platform:     PlatformVideo,
				IsCollection: true,
				CollectionID: "PLabc123def456",
			},
		},
		{
			name:  "playlist-only URL",
			input: "https://www.youtube.com/watch?list=PLabc123def456",
			want: &Descriptor{
				Platform:     PlatformVideo,
				IsCollection: true,
				CollectionID: "PLabc123def456",
			},
		},
		{
			name:  "playlist path",
			input: "https://www.youtube.com/playlist/PLabc123def456",
			want: &Descriptor{
				Platform:     PlatformVideo,
				IsCollection: true,
				CollectionID: "PLabc123def456",
			},
		},
		{
			name:  "music host watch URL",
			input: "https://music.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  &Descriptor{ID: "dQw4w9WgXcQ", Platform: PlatformVideo},
		},
		{
			name:  "streaming track",
			input: "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl",
			want:  &Descriptor{ID: "11dFghVXANMlKmJXsNCbNl", Platform: PlatformStreaming},
		},
		{
			name:  "streaming track with trailing query",
			input: "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl?si=abcdef",
			want:  &Descriptor{ID: "11dFghVXANMlKmJXsNCbNl", Platform: PlatformStreaming},
		},
		{
			name:  "streaming playlist",
			input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want: &Descriptor{
				Platform:     PlatformStreaming,
				IsCollection: true,
				CollectionID: "37i9dQZF1DXcBWIGoYBM5M",
			},
		},
		{
			name:  "search query",
			input: "lofi hip hop radio",
			want: &Descriptor{
				ID:            "lofi hip hop radio",
				Platform:      PlatformVideo,
				IsSearchQuery: true,
			},
		},
		{
			name:  "search query is trimmed",
			input: "  never gonna give you up  ",
			want: &Descriptor{
				ID:            "never gonna give you up",
				Platform:      PlatformVideo,
				IsSearchQuery: true,
			},
		},
		{
			name:  "video ID too short",
			input: "https://www.youtube.com/watch?v=short",
			want:  nil,
		},
		{
			name:  "video ID too long",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQtoolong",
			want:  nil,
		},
		{
			name:  "unrelated host",
			input: "https://example.com/watch?v=dQw4w9WgXcQ",
			want:  nil,
		},
		{
			name:  "schemeless www input",
			input: "www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Classify(%q) = %+v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Classify(%q) = nil, want %+v", tt.input, tt.want)
			}
			if *got != *tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want string
	}{
		{
			name: "video single",
			desc: Descriptor{ID: "dQw4w9WgXcQ", Platform: PlatformVideo},
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "video collection",
			desc: Descriptor{Platform: PlatformVideo, IsCollection: true, CollectionID: "PLabc"},
			want: "https://www.youtube.com/playlist?list=PLabc",
		},
		{
			name: "streaming single",
			desc: Descriptor{ID: "11dF", Platform: PlatformStreaming},
			want: "https://open.spotify.com/track/11dF",
		},
		{
			name: "streaming collection",
			desc: Descriptor{Platform: PlatformStreaming, IsCollection: true, CollectionID: "37i9"},
			want: "https://open.spotify.com/playlist/37i9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.WatchURL(); got != tt.want {
				t.Errorf("WatchURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
