package cache

func init() {
	Register("none", newNoopCache)
}

// noopCache never stores anything; every Get is a miss.
type noopCache struct{}

func newNoopCache(ProviderConfig) (Cache, error) {
	return noopCache{}, nil
}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
func (noopCache) Contains(string) bool      { return false }
func (noopCache) Len() int                  { return 0 }
func (noopCache) Close() error              { return nil }
