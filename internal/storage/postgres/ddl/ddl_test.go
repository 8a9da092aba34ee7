package ddl

import (
	"strings"
	"testing"

	gddl "tabimport/internal/ddl"
	"tabimport/internal/schema"
)

/*
TestCreateTableSQL_PointTable checks the Postgres statement for a point
table, including sorted primary key columns and quoting.
*/
func TestCreateTableSQL_PointTable(t *testing.T) {
	t.Parallel()

	got, err := CreateTableSQL("public.people", schema.Schema{
		{Name: "age", Type: schema.Integer},
		{Name: "h", Type: schema.Float},
		{Name: "female", Type: schema.Boolean},
	})
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}

	want := `CREATE TABLE IF NOT EXISTS "public"."people" (
  "run_id" TEXT NOT NULL,
  "point_index" BIGINT NOT NULL,
  "x" DOUBLE PRECISION NOT NULL,
  "y" DOUBLE PRECISION NOT NULL,
  "z" DOUBLE PRECISION NOT NULL,
  "age" BIGINT,
  "h" DOUBLE PRECISION,
  "female" BOOLEAN,
  PRIMARY KEY ("point_index", "run_id")
);`
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

/*
TestQuoting verifies identifier escaping.
*/
func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := Dialect.QuoteFQN(`public..we"ird`); got != `"public"."we""ird"` {
		t.Fatalf("QuoteFQN=%s", got)
	}
	if _, err := Dialect.CreateTable(gddl.TableDef{}); err == nil || !strings.Contains(err.Error(), "postgres ddl: table FQN") {
		t.Fatalf("err=%v; want FQN error", err)
	}
}
