package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "job":
		handleJob(args)
	case "application":
		handleApplication(args)
	case "apply":
		applyToJob(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: jobboard auth <signup|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "signup":
		signupUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleJob(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: jobboard job <list|post|update|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listJobs(args[1:])
	case "post":
		postJob(args[1:])
	case "update":
		updateJob(args[1:])
	case "delete":
		deleteJob(args[1:])
	default:
		fmt.Printf("unknown job command: %s\n", subCmd)
	}
}

func handleApplication(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: jobboard application <list|status>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listApplications(args[1:])
	case "status":
		updateApplicationStatus(args[1:])
	default:
		fmt.Printf("unknown application command: %s\n", subCmd)
	}
}

// Auth commands
func signupUser(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	role := fs.String("role", "candidate", "role (candidate or recruiter)")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"name":     *name,
		"email":    *email,
		"password": *password,
		"role":     *role,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/signup", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Signed up: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Signup failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/me", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in (token expired or invalid)")
		return
	}

	var me map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&me)
	fmt.Printf("✓ Logged in as %v (%v, role %v)\n", me["name"], me["email"], me["role"])
}

// Job commands
func listJobs(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/jobs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var jobs []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&jobs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPOSTED BY\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", j["id"], j["title"], j["postedBy"], j["createdAt"])
	}
	w.Flush()
}

func postJob(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "job title")
	description := fs.String("description", "", "job description")

	fs.Parse(args)

	if *title == "" || *description == "" {
		fmt.Println("Error: title and description are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"title": *title, "description": *description}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/jobs", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Job posted: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Post failed: %v\n", result)
	}
}

func updateJob(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "job ID")
	title := fs.String("title", "", "job title")
	description := fs.String("description", "", "job description")

	fs.Parse(args)

	if *id == "" || *title == "" || *description == "" {
		fmt.Println("Error: id, title, and description are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"title": *title, "description": *description}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PUT", getAPIURL()+"/jobs/"+*id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Println("✓ Job updated")
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Update failed: %v\n", result)
	}
}

func deleteJob(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: jobboard job delete <job-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/jobs/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 || resp.StatusCode == 204 {
		fmt.Println("✓ Job deleted")
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Application commands
func listApplications(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: jobboard application list <job-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/jobs/"+args[0]+"/applications", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ List failed: %v\n", result)
		return
	}

	var apps []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&apps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCANDIDATE\tSTATUS\tDATE")
	for _, a := range apps {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", a["id"], a["candidate"], a["status"], a["date"])
	}
	w.Flush()
}

func updateApplicationStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "application ID")
	status := fs.String("status", "", "target status (Accepted or Rejected)")

	fs.Parse(args)

	if *id == "" || *status == "" {
		fmt.Println("Error: id and status are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"status": *status}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PUT", getAPIURL()+"/applications/"+*id+"/status", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Application %v is now %v\n", result["id"], result["status"])
	} else {
		fmt.Printf("✗ Status update failed: %v\n", result)
	}
}

// Apply command (multipart resume upload)
func applyToJob(args []string) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	jobID := fs.String("job", "", "job ID")
	resumePath := fs.String("resume", "", "path to resume file (PDF or plain text)")

	fs.Parse(args)

	if *jobID == "" || *resumePath == "" {
		fmt.Println("Error: job and resume are required")
		fs.PrintDefaults()
		return
	}

	file, err := os.Open(*resumePath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("resume", filepath.Base(*resumePath))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if _, err := io.Copy(part, file); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	writer.Close()

	req, _ := http.NewRequest("POST", getAPIURL()+"/jobs/"+*jobID+"/apply", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Applied to job %s (application %v)\n", *jobID, result["id"])
	} else {
		fmt.Printf("✗ Apply failed: %v\n", result)
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("JOBBOARD_API"); url != "" {
		return url
	}
	return "http://localhost:5000/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.jobboard/token"
}

func saveToken(token string) error {
	os.MkdirAll(os.Getenv("HOME")+"/.jobboard", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`JobBoard CLI

Usage:
  jobboard <command> [options]

Commands:
  auth         User authentication (signup, login, logout, who)
  job          Job operations (list, post, update, delete)
  apply        Apply to a job with a resume file
  application  Application review (list, status) - job owner only
  help         Show this help message

Environment Variables:
  JOBBOARD_API    API endpoint (default: http://localhost:5000/api)

Examples:
  jobboard auth signup -name Ada -email ada@example.com -password secret123 -role recruiter
  jobboard auth login -email ada@example.com -password secret123
  jobboard job post -title "Go Engineer" -description "Build services"
  jobboard apply -job <job-id> -resume ./resume.pdf
  jobboard application list <job-id>
`)
}
