package git

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// Identity names the author or committer of a commit or tag. A zero
// When means "now"; it is resolved when the identity is used, not
// when it is constructed.
type Identity struct {
	Name  string
	Email string
	When  time.Time
}

// withDefaults resolves a zero timestamp to the current time.
func (id Identity) withDefaults() Identity {
	if id.When.IsZero() {
		id.When = time.Now()
	}
	return id
}

// signature converts the identity into a go-git commit signature.
func (id Identity) signature() object.Signature {
	id = id.withDefaults()
	return object.Signature{
		Name:  id.Name,
		Email: id.Email,
		When:  id.When,
	}
}

// committerEnv renders the identity as the GIT_COMMITTER_* overlay
// used when shelling out for annotated tags. The date format is
// seconds-since-epoch plus the timezone offset, e.g. "1700000000 +0100".
func (id Identity) committerEnv() []string {
	id = id.withDefaults()
	return []string{
		fmt.Sprintf("GIT_COMMITTER_NAME=%s", id.Name),
		fmt.Sprintf("GIT_COMMITTER_EMAIL=%s", id.Email),
		fmt.Sprintf("GIT_COMMITTER_DATE=%d %s", id.When.Unix(), id.When.Format("-0700")),
	}
}
