package parallel

import (
	"testing"

	"github.com/vnykmshr/fanout/internal/testutil"
)

type record struct {
	Name  string
	Count int
	Tags  []string
}

func TestCodecs(t *testing.T) {
	in := shard[record]{
		Index: 2,
		Items: []record{{Name: "a", Count: 1, Tags: []string{"x"}}, {Name: "b", Count: 2}},
		Args:  buildArgs([]Arg{Kw("label", "v")}),
	}

	for _, codec := range []Codec{GobCodec{}, JSONCodec{}, YAMLCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(in)
			testutil.AssertNoError(t, err)

			var out shard[record]
			testutil.AssertNoError(t, codec.Unmarshal(data, &out))

			testutil.AssertEqual(t, out.Index, 2)
			testutil.AssertEqual(t, len(out.Items), 2)
			testutil.AssertEqual(t, out.Items[0].Name, "a")
			testutil.AssertSliceEqual(t, out.Items[0].Tags, []string{"x"})
			testutil.AssertEqual(t, out.Items[1].Count, 2)

			label, ok := Lookup[string](out.Args, "label")
			testutil.AssertEqual(t, ok, true)
			testutil.AssertEqual(t, label, "v")
		})
	}
}

func TestCodecsRejectUnsupportedValues(t *testing.T) {
	for _, codec := range []Codec{GobCodec{}, JSONCodec{}, YAMLCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			_, err := codec.Marshal(make(chan int))
			testutil.AssertError(t, err)
		})
	}
}

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "gob", false},
		{"gob", "gob", false},
		{"JSON", "json", false},
		{" yaml ", "yaml", false},
		{"yml", "yaml", false},
		{"msgpack", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CodecByName(tt.name)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, codec.Name(), tt.want)
		})
	}
}

func TestCodecEmptyCollections(t *testing.T) {
	in := [][]int{{}, nil, {1}}

	tests := []struct {
		codec     Codec
		emptyKept bool
	}{
		{GobCodec{}, false},
		{JSONCodec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.codec.Name(), func(t *testing.T) {
			data, err := tt.codec.Marshal(in)
			testutil.AssertNoError(t, err)

			var out [][]int
			testutil.AssertNoError(t, tt.codec.Unmarshal(data, &out))

			testutil.AssertEqual(t, len(out), 3)
			testutil.AssertEqual(t, out[0] != nil, tt.emptyKept)
			testutil.AssertEqual(t, len(out[0]), 0)
			testutil.AssertEqual(t, out[1] == nil, true)
			testutil.AssertSliceEqual(t, out[2], []int{1})
		})
	}
}
