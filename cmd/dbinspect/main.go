// Package main prints schema details from a running Postgres database.
//
//	go run ./cmd/dbinspect                 tables and row counts
//	go run ./cmd/dbinspect <table>         columns and constraints of a table
//	go run ./cmd/dbinspect -constraint fk  tables owning constraints matching fk
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"adminhub/internal/config"
	"adminhub/internal/database"

	"gorm.io/gorm"
)

func main() {
	constraint := flag.String("constraint", "", "search constraints by name (substring)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatal(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	switch {
	case *constraint != "":
		err = findConstraints(db, w, *constraint)
	case flag.NArg() > 0:
		err = describeTable(db, w, flag.Arg(0))
	default:
		err = listTables(db, w)
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

func listTables(db *gorm.DB, w *tabwriter.Writer) error {
	var rows []struct {
		Relname string `gorm:"column:relname"`
		Rows    int64  `gorm:"column:n_live_tup"`
	}
	if err := db.Raw("SELECT relname, n_live_tup FROM pg_stat_user_tables ORDER BY relname").Scan(&rows).Error; err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	fmt.Fprintln(w, "TABLE\tAPPROX ROWS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\n", r.Relname, r.Rows)
	}
	return nil
}

func describeTable(db *gorm.DB, w *tabwriter.Writer, table string) error {
	var columns []struct {
		ColumnName string `gorm:"column:column_name"`
		DataType   string `gorm:"column:data_type"`
		Nullable   string `gorm:"column:is_nullable"`
	}
	if err := db.Raw(`SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = ? ORDER BY ordinal_position`, table).Scan(&columns).Error; err != nil {
		return fmt.Errorf("describe %s: %w", table, err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %q not found", table)
	}
	fmt.Fprintf(w, "Columns in %s:\n", table)
	for _, c := range columns {
		fmt.Fprintf(w, "  %s\t%s\tnullable=%s\n", c.ColumnName, c.DataType, c.Nullable)
	}

	var constraints []struct {
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	if err := db.Raw(`SELECT conname, pg_get_constraintdef(oid) AS def FROM pg_constraint
		WHERE conrelid = to_regclass(?) ORDER BY conname`, "public."+table).Scan(&constraints).Error; err != nil {
		return fmt.Errorf("constraints of %s: %w", table, err)
	}
	fmt.Fprintf(w, "Constraints on %s:\n", table)
	for _, c := range constraints {
		fmt.Fprintf(w, "  %s\t%s\n", c.Conname, c.Def)
	}
	return nil
}

func findConstraints(db *gorm.DB, w *tabwriter.Writer, pattern string) error {
	var result []struct {
		Relname string `gorm:"column:relname"`
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	if err := db.Raw(`SELECT r.relname, c.conname, pg_get_constraintdef(c.oid) AS def
		FROM pg_constraint c
		JOIN pg_class r ON c.conrelid = r.oid
		JOIN pg_namespace n ON n.oid = r.relnamespace
		WHERE n.nspname = 'public' AND c.conname ILIKE ?
		ORDER BY r.relname, c.conname`, "%"+pattern+"%").Scan(&result).Error; err != nil {
		return fmt.Errorf("find constraints: %w", err)
	}
	fmt.Fprintln(w, "TABLE\tCONSTRAINT\tDEFINITION")
	for _, r := range result {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Relname, r.Conname, r.Def)
	}
	return nil
}
