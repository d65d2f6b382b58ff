package fscontext

import (
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// readAll reads the content of every text candidate. Reads run in parallel
// bounded by the configured worker count; the caller assembles results in
// lexical candidate order, so completion order does not matter. Failed
// reads are returned separately and recorded as omissions, never as a
// fatal error.
func (a *Assembler) readAll(candidates []candidate) (map[string]string, map[string]error) {
	contents := make(map[string]string, len(candidates))
	failed := make(map[string]error)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.workers)

	for _, c := range candidates {
		if c.binary {
			continue
		}
		g.Go(func() error {
			data, err := os.ReadFile(c.path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[c.path] = err
				return nil
			}
			contents[c.path] = string(data)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	return contents, failed
}
