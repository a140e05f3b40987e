package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Field order is the wire order;
// append new fields at the end of each struct's encoding only.

var (
	IDMUS   = idMUS{}
	ItemMUS = itemMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// timeMicroMUS encodes timestamps as Unix microseconds in UTC.
type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

// float64MUS stores the IEEE-754 bit pattern.
type float64MUS struct{}

func (s float64MUS) Marshal(v float64, bs []byte) (n int) {
	return varint.Uint64.Marshal(math.Float64bits(v), bs)
}

func (s float64MUS) Unmarshal(bs []byte) (v float64, n int, err error) {
	bits, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(bits), n, err
}

func (s float64MUS) Size(v float64) (size int) {
	return varint.Uint64.Size(math.Float64bits(v))
}

type stringSliceMUS struct{}

func (s stringSliceMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, str := range v {
		n += ord.String.Marshal(str, bs[n:])
	}
	return n
}

func (s stringSliceMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, 0, length)
	for i := 0; i < length; i++ {
		str, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v = append(v, str)
	}
	return v, n, nil
}

func (s stringSliceMUS) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, str := range v {
		size += ord.String.Size(str)
	}
	return size
}

type itemMUS struct{}

func (s itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.UserId, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.ContentType, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.Thumbnail, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += stringSliceMUS{}.Marshal(v.Keywords, bs[n:])
	n += ord.String.Marshal(string(v.Emotion), bs[n:])
	n += float64MUS{}.Marshal(v.SentimentScore, bs[n:])
	n += ord.Bool.Marshal(v.Processed, bs[n:])
	n += ord.String.Marshal(v.ProcessingError, bs[n:])
	n += timeMicroMUS{}.Marshal(v.CreatedAt, bs[n:])
	n += timeMicroMUS{}.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	var n1 int
	step := func(fn func([]byte) (int, error)) {
		if err != nil {
			return
		}
		n1, err = fn(bs[n:])
		n += n1
	}
	str := func(dst *string) func([]byte) (int, error) {
		return func(b []byte) (int, error) {
			val, m, e := ord.String.Unmarshal(b)
			*dst = val
			return m, e
		}
	}
	id := func(dst *ID) func([]byte) (int, error) {
		return func(b []byte) (int, error) {
			val, m, e := IDMUS.Unmarshal(b)
			*dst = val
			return m, e
		}
	}
	tm := func(dst *time.Time) func([]byte) (int, error) {
		return func(b []byte) (int, error) {
			val, m, e := timeMicroMUS{}.Unmarshal(b)
			*dst = val
			return m, e
		}
	}

	var emotion string
	step(id(&v.Id))
	step(id(&v.UserId))
	step(str(&v.URL))
	step(str(&v.Title))
	step(str(&v.Source))
	step(str(&v.ContentType))
	step(str(&v.Content))
	step(str(&v.Thumbnail))
	step(str(&v.Summary))
	step(func(b []byte) (int, error) {
		val, m, e := stringSliceMUS{}.Unmarshal(b)
		v.Keywords = val
		return m, e
	})
	step(str(&emotion))
	step(func(b []byte) (int, error) {
		val, m, e := float64MUS{}.Unmarshal(b)
		v.SentimentScore = val
		return m, e
	})
	step(func(b []byte) (int, error) {
		val, m, e := ord.Bool.Unmarshal(b)
		v.Processed = val
		return m, e
	})
	step(str(&v.ProcessingError))
	step(tm(&v.CreatedAt))
	step(tm(&v.UpdatedAt))
	v.Emotion = Emotion(emotion)
	return v, n, err
}

func (s itemMUS) Size(v Item) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.UserId)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.ContentType)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.Thumbnail)
	size += ord.String.Size(v.Summary)
	size += stringSliceMUS{}.Size(v.Keywords)
	size += ord.String.Size(string(v.Emotion))
	size += float64MUS{}.Size(v.SentimentScore)
	size += ord.Bool.Size(v.Processed)
	size += ord.String.Size(v.ProcessingError)
	size += timeMicroMUS{}.Size(v.CreatedAt)
	size += timeMicroMUS{}.Size(v.UpdatedAt)
	return size
}
