package config

import "testing"

func TestDefault_Validates(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"ok", Config{ChunkSize: 8, BufferSize: 4}, nil},
		{"zero chunk", Config{ChunkSize: 0, BufferSize: 4}, ErrChunkSizeNotPositive},
		{"negative chunk", Config{ChunkSize: -8, BufferSize: 4}, ErrChunkSizeNotPositive},
		{"zero buffer", Config{ChunkSize: 8, BufferSize: 0}, ErrBufferSizeNotPositive},
		{"not a multiple", Config{ChunkSize: 10, BufferSize: 4}, ErrChunkSizeNotMultiple},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.cfg.Validate()
			if got != tc.want {
				t.Errorf("Validate() = %v, want %v", got, tc.want)
			}
		})
	}
}
