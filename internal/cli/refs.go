package cli

import (
	"strconv"
	"strings"

	"uptask/internal/errors"
	"uptask/internal/store"
)

// allRef names every task of the current list.
const allRef = "all"

// span is an inclusive range of 1-based list positions.
type span struct {
	from, to int
}

// parseRefs parses a comma-separated list of positions and a-b ranges.
func parseRefs(refs string) ([]span, error) {
	var spans []span
	for _, part := range strings.Split(refs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		from, err := parsePosition(bounds[0])
		if err != nil {
			return nil, errors.NewInvalidInputError("ref", part, "expected a position like 3 or a range like 2-5")
		}
		to := from
		if len(bounds) == 2 {
			if to, err = parsePosition(bounds[1]); err != nil {
				return nil, errors.NewInvalidInputError("ref", part, "expected a position like 3 or a range like 2-5")
			}
		}
		spans = append(spans, span{from: from, to: to})
	}
	if len(spans) == 0 {
		return nil, errors.NewInvalidInputError("ref", refs, "no task positions given")
	}
	return spans, nil
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// taskAt returns the id of the task at a 1-based position of ordered.
func taskAt(ordered []string, pos int) (string, error) {
	if pos < 1 || pos > len(ordered) {
		return "", errors.NewNotFoundError("task", "#"+strconv.Itoa(pos))
	}
	return ordered[pos-1], nil
}

// resolveRef maps a single position to a task id of the current project.
func resolveRef(st *store.Store, ref string) (string, error) {
	pos, err := parsePosition(ref)
	if err != nil {
		return "", errors.NewInvalidInputError("ref", ref, "expected a task position from the list")
	}
	return taskAt(st.OrderedTaskIDs(), pos)
}

// selectRefs replaces the store's selection with the tasks named by refs and
// returns them in selection order. "all" selects every listed task. Single
// positions are added as they appear; a range anchors on its first position and
// extends to its last.
func selectRefs(st *store.Store, refs string) ([]string, error) {
	st.ClearSelection()
	if strings.EqualFold(strings.TrimSpace(refs), allRef) {
		st.SelectAllVisible()
		return st.SelectedTaskIDs(), nil
	}

	spans, err := parseRefs(refs)
	if err != nil {
		return nil, err
	}
	ordered := st.OrderedTaskIDs()

	for _, sp := range spans {
		from, err := taskAt(ordered, sp.from)
		if err != nil {
			return nil, err
		}
		if sp.from == sp.to {
			st.SelectTasks([]string{from})
			continue
		}
		to, err := taskAt(ordered, sp.to)
		if err != nil {
			return nil, err
		}
		if err := st.ToggleSelection(from); err != nil {
			return nil, err
		}
		if err := st.SelectRange(to, ordered); err != nil {
			return nil, err
		}
	}
	return st.SelectedTaskIDs(), nil
}
