package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modatlas/internal/store"
)

var recordScope []string

// recordCmd groups work-record subcommands
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage work records scoped to policy modules",
}

var recordAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a work record with a validated module scope",
	Long: `Creates a work record. The --scope references are resolved and
validated against the policy first; a record with an unresolvable scope is
never persisted.

Example:
  modatlas record add "harden auth flow" --scope auth-core --scope gateway`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordAdd,
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work records",
	RunE:  runRecordList,
}

var recordRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a work record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordRm,
}

func init() {
	recordAddCmd.Flags().StringArrayVar(&recordScope, "scope", nil, "module reference (repeatable)")

	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordRmCmd)
}

func openStore() (*store.RecordStore, error) {
	return store.Open(resolvePath(cfg.Paths.DatabasePath))
}

func runRecordAdd(cmd *cobra.Command, args []string) error {
	pol, aliasCache, err := loadInputs()
	if err != nil {
		return err
	}
	aliases, err := aliasCache.Load()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.SaveRecord(store.Record{
		Title:       args[0],
		ModuleScope: recordScope,
	}, pol, aliases)
	if err != nil {
		var scopeErr *store.ScopeValidationError
		if errors.As(err, &scopeErr) {
			fmt.Print(renderValidation(scopeErr.Result))
		}
		return err
	}

	fmt.Printf("Created record %s (%s)\n", rec.ID, rec.Title)
	if len(rec.ModuleScope) > 0 {
		fmt.Printf("  scope: %s\n", strings.Join(rec.ModuleScope, ", "))
	}
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.ListRecords("")
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No records.")
		return nil
	}

	for _, rec := range records {
		scope := "-"
		if len(rec.ModuleScope) > 0 {
			scope = strings.Join(rec.ModuleScope, ", ")
		}
		fmt.Printf("%s  [%s]  %s  (scope: %s)\n", rec.ID, rec.Status, rec.Title, scope)
	}
	return nil
}

func runRecordRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteRecord(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted record %s\n", args[0])
	return nil
}
