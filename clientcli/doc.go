// Package clientcli provides a client library for the conduit HTTP API.
//
// It covers the health, status, users and calc endpoints and includes
// profile-based configuration for managing connections to several servers.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:3003"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user, err := client.CreateUser(ctx, clientcli.CreateUserOptions{
//		Name:  "Ada",
//		Email: "ada@example.com",
//	})
//
// # Profile Configuration
//
// Profiles are stored as YAML, by default in ~/.conduit/config.yaml:
//
//	profiles:
//	  - name: local
//	    endpoint: http://localhost:3003
//	    default: true
//
// Resolution order is config file, then CONDUIT_ENDPOINT, then flags.
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUsers(os.Stdout, users)
package clientcli
