package mirror

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxScriptSize caps a script download at 10MB; mirrored userscripts
// are text files orders of magnitude smaller.
const maxScriptSize = 10 << 20

// ScriptVersion extracts the version from a userscript metadata
// block ("// @version 1.2.3"). Returns the empty string when the
// script carries no version.
func ScriptVersion(script []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(script))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "//") {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, "//"))
		if len(fields) >= 2 && fields[0] == "@version" {
			return fields[1]
		}

		// Metadata blocks end with ==/UserScript==
		if len(fields) >= 1 && fields[0] == "==/UserScript==" {
			break
		}
	}
	return ""
}

func readAllBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxScriptSize {
		return nil, errors.New("script exceeds size limit")
	}
	return body, nil
}
