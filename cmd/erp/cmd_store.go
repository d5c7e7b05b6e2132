package main

import (
	"encoding/json"
	"fmt"

	"agenticerp/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedData bool

	lookupJSON     bool
	filterID       int64
	filterName     string
	filterEmail    string
	filterPhone    string
	filterStatus   string
	filterCustomer int64
)

// initCmd creates the schema
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the ERP tables, optionally with sample data",
	Long: `Creates the customers, orders, products, order_items, leads and reviews
tables if they do not exist. With --seed, sample data is inserted when the
customers table is empty.`,
	RunE: runInit,
}

// tablesCmd lists the tables of the store
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the database",
	RunE:  runTables,
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers (filters: --id, --name, --email, --phone)",
	RunE:  runCustomers,
}

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Customer management",
}

var customerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a customer",
	Long: `Creates a customer record and prints it.

Example:
  erp customer create --name "Delta Inc" --email ops@delta.example`,
	RunE: runCustomerCreate,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders (filters: --id, --customer)",
	RunE:  runOrders,
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List leads (filters: --id, --email, --status)",
	RunE:  runLeads,
}

func init() {
	initCmd.Flags().BoolVar(&seedData, "seed", false, "Insert sample data into an empty database")

	for _, c := range []*cobra.Command{customersCmd, ordersCmd, leadsCmd} {
		c.Flags().BoolVar(&lookupJSON, "json", false, "Print JSON")
		c.Flags().Int64Var(&filterID, "id", 0, "Match by id")
	}
	customersCmd.Flags().StringVar(&filterName, "name", "", "Name contains")
	customersCmd.Flags().StringVar(&filterEmail, "email", "", "Email contains")
	customersCmd.Flags().StringVar(&filterPhone, "phone", "", "Phone contains")
	ordersCmd.Flags().Int64Var(&filterCustomer, "customer", 0, "Customer id")
	leadsCmd.Flags().StringVar(&filterEmail, "email", "", "Contact email contains")
	leadsCmd.Flags().StringVar(&filterStatus, "status", "", "Exact status")

	customerCreateCmd.Flags().StringVar(&filterName, "name", "", "Customer name (required)")
	customerCreateCmd.Flags().StringVar(&filterEmail, "email", "", "Email")
	customerCreateCmd.Flags().StringVar(&filterPhone, "phone", "", "Phone")
	customerCmd.AddCommand(customerCreateCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	if err := sys.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	fmt.Printf("Schema ready (%s)\n", sys.Store.Dialect().Name())

	if !seedData {
		return nil
	}
	res, err := sys.Store.Seed(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Println("Sample data skipped: customers already exist")
		return nil
	}
	logger.Info("Seeded sample data", zap.Int("customers", res.Customers), zap.Int("orders", res.Orders))
	fmt.Printf("Seeded %d customers, %d orders, %d products, %d order items, %d leads, %d reviews\n",
		res.Customers, res.Orders, res.Products, res.OrderItems, res.Leads, res.Reviews)
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	tables, err := sys.Store.ListTables(ctx)
	if err != nil {
		fmt.Printf("Error fetching tables: %v\n", err)
		return nil
	}
	if len(tables) == 0 {
		fmt.Println("No tables found. Run 'erp init' first.")
		return nil
	}
	fmt.Printf("Tables (%d):\n", len(tables))
	for _, t := range tables {
		fmt.Printf("  %s\n", t)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runCustomers(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	customers, err := sys.Store.Customers(ctx, store.CustomerFilter{
		ID: filterID, Name: filterName, Email: filterEmail, Phone: filterPhone,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil
	}
	if lookupJSON {
		return printJSON(customers)
	}
	if len(customers) == 0 {
		fmt.Println("No customers found")
		return nil
	}
	for _, c := range customers {
		fmt.Printf("#%d  %-20s  %-25s  %s\n", c.ID, c.Name, c.Email, c.Phone)
	}
	return nil
}

func runCustomerCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	c, err := sys.Store.CreateCustomer(ctx, filterName, filterEmail, filterPhone)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil
	}
	fmt.Printf("Customer '%s' created successfully (id %d)\n", c.Name, c.ID)
	return nil
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	orders, err := sys.Store.Orders(ctx, store.OrderFilter{ID: filterID, CustomerID: filterCustomer})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil
	}
	if lookupJSON {
		return printJSON(orders)
	}
	if len(orders) == 0 {
		fmt.Println("No orders found")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("#%d  customer %d  %-10s  $%s  %s\n", o.ID, o.CustomerID, o.Status, o.Total.StringFixed(2), o.CreatedAt)
	}
	return nil
}

func runLeads(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	leads, err := sys.Store.Leads(ctx, store.LeadFilter{ID: filterID, Email: filterEmail, Status: filterStatus})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil
	}
	if lookupJSON {
		return printJSON(leads)
	}
	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}
	for _, l := range leads {
		score := "-"
		if l.Score != nil {
			score = fmt.Sprintf("%.2f", *l.Score)
		}
		fmt.Printf("#%d  %-25s  %-10s  %s\n", l.ID, l.ContactEmail, l.Status, score)
	}
	return nil
}
