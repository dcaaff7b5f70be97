package histstore

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.elv.sh/pkg/testutil"
)

func openTemp(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(testutil.TempDir(t), "history.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open -> %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestStore_AddAndQuery(t *testing.T) {
	st, _ := openTemp(t)

	if seq, err := st.NextCmdSeq(); seq != 1 || err != nil {
		t.Errorf("NextCmdSeq on empty store -> (%d, %v), want (1, nil)", seq, err)
	}
	for i, text := range []string{"echo a", "cd /tmp", "echo\nmulti line"} {
		seq, err := st.AddCmd(text)
		if seq != i+1 || err != nil {
			t.Errorf("AddCmd(%q) -> (%d, %v), want (%d, nil)", text, seq, err, i+1)
		}
	}
	if seq, _ := st.NextCmdSeq(); seq != 4 {
		t.Errorf("NextCmdSeq -> %d, want 4", seq)
	}
	if cmds, err := st.CmdsWithSeq(10, 20); len(cmds) != 0 || err != nil {
		t.Errorf("CmdsWithSeq(10, 20) -> (%v, %v), want none", cmds, err)
	}

	cmds, err := st.CmdsWithSeq(2, 4)
	want := []Cmd{{2, "cd /tmp"}, {3, "echo\nmulti line"}}
	if diff := cmp.Diff(want, cmds); diff != "" || err != nil {
		t.Errorf("CmdsWithSeq(2, 4) (-want +got):\n%s (err %v)", diff, err)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	st, path := openTemp(t)
	st.AddCmd("echo persisted")
	st.Close()

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("Open again -> %v", err)
	}
	defer st2.Close()
	cmds, err := st2.CmdsWithSeq(0, 2)
	if diff := cmp.Diff([]Cmd{{1, "echo persisted"}}, cmds); diff != "" || err != nil {
		t.Errorf("CmdsWithSeq after reopen (-want +got):\n%s (err %v)", diff, err)
	}
}
