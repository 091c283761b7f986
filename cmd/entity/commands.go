package entity

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [keyspace] [id] [json]",
		Short: "Stores an entity and maintains its secondary indexes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, id := args[0], args[1]

			var entity map[string]any
			if err := json.Unmarshal([]byte(args[2]), &entity); err != nil {
				return fmt.Errorf("entity must be a JSON object: %w", err)
			}

			if err := adapterFor(ks).Put(id, entity, ks); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [keyspace] [id]",
		Short: "Reads an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, id := args[0], args[1]

			entity, err := adapterFor(ks).Get(id, ks)
			if err != nil {
				return err
			}
			if entity == nil {
				fmt.Printf("id=%s, found=false\n", id)
				return nil
			}
			return printEntity(id, entity)
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [keyspace] [id]",
		Short: "Tests whether an entity exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, id := args[0], args[1]

			ok, err := adapterFor(ks).Contains(id, ks)
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, found=%v\n", id, ok)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [keyspace] [id]",
		Short: "Deletes an entity and its index entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, id := args[0], args[1]

			entity, err := adapterFor(ks).Delete(id, ks)
			if err != nil {
				return err
			}
			if entity == nil {
				fmt.Printf("id=%s, found=false\n", id)
				return nil
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [keyspace]",
		Short: "Reads all entities of a keyspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := args[0]

			entities, err := adapterFor(ks).GetAllOf(ks)
			if err != nil {
				return err
			}
			for i, entity := range entities {
				if err := printEntity(fmt.Sprintf("#%d", i), entity); err != nil {
					return err
				}
			}
			fmt.Printf("%d entities\n", len(entities))
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count [keyspace]",
		Short: "Counts the entities of a keyspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := args[0]

			count, err := adapterFor(ks).Count(ks)
			if err != nil {
				return err
			}
			fmt.Printf("keyspace=%s, count=%d\n", ks, count)
			return nil
		},
	}
	dropCmd = &cobra.Command{
		Use:   "drop [keyspace]",
		Short: "Deletes all entities and indexes of a keyspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := args[0]

			if err := adapterFor(ks).DeleteAllOf(ks); err != nil {
				return err
			}
			fmt.Println("drop successfully")
			return nil
		},
	}
)

// printEntity renders an entity as one line of JSON
func printEntity(label string, entity any) error {
	b, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", label, b)
	return nil
}
