package segcache_test

import (
	"errors"
	"fmt"

	"github.com/gogpu/segcache"
)

func Example() {
	c, err := segcache.New(3)
	if err != nil {
		panic(err)
	}
	names := segcache.NewSegment[int, string](c, nil)
	blobs := segcache.NewSegment[string, []byte](c, func(_ string, b []byte) int {
		return len(b)
	})

	_ = names.Put(1, "one")
	_ = names.Put(2, "two")
	_ = blobs.Put("pair", []byte{0xCA, 0xFE})

	_, ok := names.Get(1)
	fmt.Println("1 resident:", ok)
	fmt.Println("size:", c.Size())

	err = names.Put(2, "deux")
	fmt.Println("duplicate:", errors.Is(err, segcache.ErrDuplicateKey))
	// Output:
	// 1 resident: false
	// size: 3
	// duplicate: true
}
