package cache_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		memory  *emu.Memory
		warnBuf *bytes.Buffer
		backing *cache.MemoryBacking
	)

	BeforeEach(func() {
		warnBuf = &bytes.Buffer{}
		memory = emu.NewMemory(0x2000, emu.WithWarnOutput(warnBuf))
		backing = cache.NewMemoryBacking(memory)
		// Small cache for testing: 4KB, 4-way, 16B lines = 64 sets
		config := cache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   10,
		}
		c = cache.New(config, backing)
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			// Write data to memory first
			memory.Write32(0x1000, 0xDEADBEEF)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Data).To(Equal(uint32(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			memory.Write32(0x1000, 0xCAFEBABE)

			// First read - miss
			c.Read(0x1000, 4)

			// Second read - should hit
			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(result.Data).To(Equal(uint32(0xCAFEBABE)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should hit on different addresses in same cache line", func() {
			memory.Write32(0x1000, 0x11111111)
			memory.Write32(0x1004, 0x22222222)

			// First read at 0x1000 - miss, loads entire cache line
			c.Read(0x1000, 4)

			// Read at 0x1004 - should hit (same cache line)
			result := c.Read(0x1004, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Data).To(Equal(uint32(0x22222222)))
		})

		It("should read narrow values", func() {
			memory.Write32(0x1000, 0xDEADBEEF)

			Expect(c.Read(0x1000, 1).Data).To(Equal(uint32(0xEF)))
			Expect(c.Read(0x1002, 2).Data).To(Equal(uint32(0xDEAD)))
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss", func() {
			result := c.Write(0x1000, 4, 0x12345678)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))

			// Subsequent read should hit
			readResult := c.Read(0x1000, 4)
			Expect(readResult.Hit).To(BeTrue())
			Expect(readResult.Data).To(Equal(uint32(0x12345678)))
		})

		It("should hit on cached data", func() {
			// First write - miss
			c.Write(0x1000, 4, 0x11111111)

			// Second write - should hit
			result := c.Write(0x1000, 4, 0x22222222)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))

			// Verify data
			readResult := c.Read(0x1000, 4)
			Expect(readResult.Data).To(Equal(uint32(0x22222222)))
		})

		It("should add forwarding latency to a load after a store to the same address", func() {
			c.Write(0x1000, 4, 0x11111111)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1) + cache.StoreForwardLatency))

			// The forwarding event is consumed by the first load
			result = c.Read(0x1000, 4)
			Expect(result.Latency).To(Equal(uint64(1)))
		})
	})

	Describe("Eviction", func() {
		It("should evict when a set is full", func() {
			// 4KB cache, 16B lines, 4-way = 64 sets.
			// Addresses 0x400 apart map to the same set.

			// Fill set 0 with 4 blocks
			c.Write(0x0000, 4, 0x11111111) // Set 0, way 0
			c.Write(0x0400, 4, 0x22222222) // Set 0, way 1
			c.Write(0x0800, 4, 0x33333333) // Set 0, way 2
			c.Write(0x0C00, 4, 0x44444444) // Set 0, way 3

			// All should hit now
			Expect(c.Read(0x0000, 4).Hit).To(BeTrue())
			Expect(c.Read(0x0400, 4).Hit).To(BeTrue())
			Expect(c.Read(0x0800, 4).Hit).To(BeTrue())
			Expect(c.Read(0x0C00, 4).Hit).To(BeTrue())

			// Access 5th address in same set - should evict LRU
			result := c.Write(0x1000, 4, 0x55555555)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())

			stats := c.Stats()
			Expect(stats.Evictions).To(Equal(uint64(1)))
		})

		It("should writeback dirty evicted blocks", func() {
			// Fill set 0 completely
			c.Write(0x0000, 4, 0x11111111)
			c.Write(0x0400, 4, 0x22222222)
			c.Write(0x0800, 4, 0x33333333)
			c.Write(0x0C00, 4, 0x44444444)

			// Access the last three to make 0x0000 the LRU
			c.Read(0x0400, 4)
			c.Read(0x0800, 4)
			c.Read(0x0C00, 4)

			// Evict - should write back 0x0000
			c.Write(0x1000, 4, 0x55555555)

			// Check memory was written back
			Expect(memory.Read32(0x0000)).To(Equal(uint32(0x11111111)))

			stats := c.Stats()
			Expect(stats.Writebacks).To(Equal(uint64(1)))
		})
	})

	Describe("Flush", func() {
		It("should write back all dirty blocks", func() {
			c.Write(0x0000, 4, 0x11111111)
			c.Write(0x1000, 4, 0x22222222)

			// Data not yet in memory (only in cache), so memory still
			// holds the fill pattern
			Expect(memory.Read32(0x0000)).To(Equal(uint32(0xa5a5a5a5)))
			Expect(memory.Read32(0x1000)).To(Equal(uint32(0xa5a5a5a5)))

			c.Flush()

			// After flush, data should be in memory
			Expect(memory.Read32(0x0000)).To(Equal(uint32(0x11111111)))
			Expect(memory.Read32(0x1000)).To(Equal(uint32(0x22222222)))

			stats := c.Stats()
			Expect(stats.Writebacks).To(Equal(uint64(2)))
		})
	})

	Describe("Invalidate", func() {
		It("should force a miss on the next access", func() {
			memory.Write32(0x1000, 0xCAFEBABE)
			c.Read(0x1000, 4)
			Expect(c.Read(0x1000, 4).Hit).To(BeTrue())

			c.Invalidate(0x1000)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Data).To(Equal(uint32(0xCAFEBABE)))
		})
	})

	Describe("Backing store clamping", func() {
		It("should fill past the end of memory with zeros, without warnings", func() {
			// Memory is 0x2000 bytes; the last line starts at 0x1ff0
			memory.Write32(0x1ff0, 0x12345678)

			result := c.Read(0x1ff0, 4)
			Expect(result.Data).To(Equal(uint32(0x12345678)))
			Expect(warnBuf.String()).To(BeEmpty())

			data := backing.Read(0x1ff8, 16)
			Expect(data[0]).To(Equal(byte(0xa5)))
			Expect(data[8:]).To(Equal(make([]byte, 8)))
			Expect(warnBuf.String()).To(BeEmpty())
		})
	})

	Describe("Default configurations", func() {
		It("should create I-cache config", func() {
			config := cache.DefaultICacheConfig()
			Expect(config.Size).To(Equal(4 * 1024))
			Expect(config.Associativity).To(Equal(2))
			Expect(config.BlockSize).To(Equal(16))
		})

		It("should create D-cache config", func() {
			config := cache.DefaultDCacheConfig()
			Expect(config.Size).To(Equal(4 * 1024))
			Expect(config.Associativity).To(Equal(4))
			Expect(config.BlockSize).To(Equal(16))
		})
	})
})
