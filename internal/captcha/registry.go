package captcha

import (
	"sync"

	"github.com/underdog7S/zenith-widgets/internal/dom"
)

// The page-level executor registry stands in for the window global the
// provider script installs once loaded. It is keyed by document so
// multiple widget instances on one host page share a single executor.
var (
	registryMu sync.Mutex
	executors  = map[*dom.Document]Executor{}
)

// RegisterExecutor installs the execution API for a host page. The
// provider script's onload path calls this; tests call it directly.
// A nil executor unregisters the page.
func RegisterExecutor(doc *dom.Document, exec Executor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if exec == nil {
		delete(executors, doc)
		return
	}
	executors[doc] = exec
}

func executorFor(doc *dom.Document) Executor {
	registryMu.Lock()
	defer registryMu.Unlock()
	return executors[doc]
}
