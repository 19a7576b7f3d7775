package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	TenantID  string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.TenantID != "" {
		req.Header.Set("X-Tenant-Id", c.TenantID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL  = envOr("CENTINELA_URL", "http://localhost:8080")
		token    = envOr("CENTINELA_TOKEN", "")
		tenantID = envOr("CENTINELA_TENANT", "")
		out      = envOr("CENTINELA_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "centinelactl",
		Short: "CLI admin para Centinela (sesiones online y kickouts)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env CENTINELA_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Bearer token de sesión (env CENTINELA_TOKEN)")
	root.PersistentFlags().StringVar(&tenantID, "tenant", tenantID, "Tenant ID para el header X-Tenant-Id (env CENTINELA_TENANT)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL, cl.Token, cl.TenantID, cl.OutFormat = baseURL, token, tenantID, out
	}

	loginCmd := &cobra.Command{
		Use:   "login <tenant_id> <username>",
		Short: "Login con usuario y password (lee CENTINELA_PASSWORD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("CENTINELA_PASSWORD")
			if password == "" {
				return fmt.Errorf("falta la password (env CENTINELA_PASSWORD)")
			}
			body, _ := json.Marshal(map[string]string{
				"tenant_id": args[0],
				"username":  args[1],
				"password":  password,
			})
			status, resp, err := cl.do("POST", "/v1/session/login", body)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	onlineCmd := &cobra.Command{
		Use:   "online",
		Short: "Directorio de sesiones online",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los usuarios online visibles para el caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do("GET", "/v1/admin/online", nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	kickCmd := &cobra.Command{
		Use:   "kick <token>",
		Short: "Termina una sesión por token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do("DELETE", "/v1/admin/online/"+args[0], nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	kickUserCmd := &cobra.Command{
		Use:   "kick-user <tenant_id> <user_id>",
		Short: "Termina todas las sesiones de un usuario",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/admin/online/users/%s/%s", args[0], args[1])
			status, resp, err := cl.do("DELETE", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	onlineCmd.AddCommand(listCmd, kickCmd, kickUserCmd)
	root.AddCommand(loginCmd, onlineCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
