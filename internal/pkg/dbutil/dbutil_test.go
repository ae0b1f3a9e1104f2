package dbutil

import (
	"reflect"
	"testing"
)

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT * FROM videos WHERE id = ? AND status = ?", []interface{}{"v1", "ready"})
	if query != "SELECT * FROM videos WHERE id = $1 AND status = $2" {
		t.Errorf("query = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"v1", "ready"}) {
		t.Errorf("args = %v", args)
	}
}

func TestFinalizeRewritesLimit(t *testing.T) {
	// gendry emits mysql-style LIMIT offset,count; postgres wants
	// LIMIT count OFFSET offset with the args swapped to match.
	query, args := Finalize("SELECT id FROM videos WHERE status = ? LIMIT ?,?", []interface{}{"ready", uint(40), uint(20)})
	if query != "SELECT id FROM videos WHERE status = $1 LIMIT $2 OFFSET $3" {
		t.Errorf("query = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"ready", uint(20), uint(40)}) {
		t.Errorf("args = %v", args)
	}
}

func TestFinalizeNoLimit(t *testing.T) {
	query, args := Finalize("DELETE FROM videos WHERE id = ?", []interface{}{"v1"})
	if query != "DELETE FROM videos WHERE id = $1" {
		t.Errorf("query = %q", query)
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}
}
