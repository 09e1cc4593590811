package cache

import (
	"os/exec"
	"strings"
	"sync"
)

// GitRevision returns a RevisionFunc reporting the HEAD commit of the git
// repository containing dir. Outside a repository (or without git installed)
// it reports "", which the cache treats as "undeterminable" rather than as a
// distinct revision.
//
// The result is memoized: the working tree is not expected to change revision
// within a single process run, and shelling out per cache lookup would
// dominate lookup cost.
func GitRevision(dir string) RevisionFunc {
	return sync.OnceValue(func() string {
		out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(out))
	})
}
