package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anirudhraja/tarslite"
	"github.com/anirudhraja/tarslite/wire"
)

// User mirrors sample.User for reflection-based Unmarshal.
type User struct {
	ID          int32             `tars:"id"`
	Name        string            `tars:"name"`
	Active      bool              `tars:"active"`
	Status      string            `tars:"status"`
	Age         int8              `tars:"age"`
	Address     *Address          `tars:"address"`
	Metadata    map[string]string `tars:"metadata"`
	Preferences map[int32]string  `tars:"preferences"`
	Posts       []Post            `tars:"posts"`
	Email       string            `tars:"email"`
	CreatedAt   int64             `tars:"created_at"`
}

type Address struct {
	Street  string
	City    string
	Country string
}

type Post struct {
	ID        int32
	Title     string
	Status    string
	Tags      []string
	ViewCount uint32 `tars:"view_count"`
}

func main() {
	tars := tarslite.NewTarslite([]string{"testdata", ""})

	// user.proto imports post.proto; both are resolved from testdata
	if err := tars.LoadSchemaFromFile("user.proto"); err != nil {
		log.Fatalf("Failed to load user.proto: %v", err)
	}

	fmt.Println("🚀 Tarslite Sample App")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Structs: %s\n", strings.Join(tars.ListStructs(), ", "))
	fmt.Printf("Enums:   %s\n", strings.Join(tars.ListEnums(), ", "))

	demonstrateOptionalFields(tars)

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("📋 Complete User Demo:")
	fmt.Println(strings.Repeat("=", 70))

	userData := map[string]interface{}{
		"id":     int32(1),
		"name":   "John Doe",
		"active": true,
		"status": "USER_ACTIVE",
		"age":    29,
		"email":  "john.doe@example.com",

		"address": map[string]interface{}{
			"street": "123 Main St",
			"city":   "San Francisco",
			"coordinates": map[string]interface{}{
				"latitude":  37.7749,
				"longitude": -122.4194,
			},
		},

		"metadata": map[string]string{
			"timezone": "PST",
			"theme":    "dark",
			"language": "en",
		},
		"preferences": map[int32]string{
			3: "auto_save",
			1: "email_notifications",
			2: "dark_theme",
		},
		"feature_flags": []bool{true, false, true, true},

		"posts": []map[string]interface{}{
			{
				"id":         int32(101),
				"title":      "A Tour of TARS",
				"status":     "POST_PUBLISHED",
				"tags":       []string{"tars", "rpc", "encoding"},
				"view_count": uint32(1500),
				"analytics": map[string]float64{
					"bounce_rate":  0.23,
					"time_on_page": 4.5,
				},
				"thumbnail": []byte{0x89, 0x50, 0x4E, 0x47},
				"comments": []map[string]interface{}{
					{
						"id":         int32(1),
						"author":     "tech_reviewer",
						"body":       "Clear and thorough.",
						"created_at": int64(1641000000),
						"replies": []map[string]interface{}{
							{"id": int32(2), "author": "john_doe", "body": "Thanks!"},
						},
					},
				},
			},
			{
				"id":     int32(102),
				"title":  "Schema Evolution with Tags",
				"status": int32(0), // POST_DRAFT
				"tags":   []string{"tars"},
			},
		},

		"created_at": int64(1609459200), // 2021-01-01
	}

	encoded, err := tars.Marshal(userData, "User")
	if err != nil {
		log.Fatalf("Failed to marshal user data: %v", err)
	}
	fmt.Printf("\n📦 Encoded user data: %d bytes\n", len(encoded))

	result, err := tars.Parse(encoded, "User")
	if err != nil {
		log.Fatalf("Failed to parse user data: %v", err)
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render result: %v", err)
	}
	fmt.Println("\n✅ Parsed with schema:")
	fmt.Println(string(pretty))

	var user User
	if err := tars.Unmarshal(encoded, &user); err != nil {
		log.Fatalf("Failed to unmarshal into Go struct: %v", err)
	}
	fmt.Printf("\n👤 User: %s (ID: %d, status %s)\n", user.Name, user.ID, user.Status)
	fmt.Printf("📧 Email: %s\n", user.Email)
	if user.Address != nil {
		fmt.Printf("🏠 Address: %s, %s, %s\n", user.Address.Street, user.Address.City, user.Address.Country)
	}
	fmt.Printf("📝 Posts: %d\n", len(user.Posts))
	for _, p := range user.Posts {
		fmt.Printf("   #%d %q [%s] views=%d tags=%v\n", p.ID, p.Title, p.Status, p.ViewCount, p.Tags)
	}
	fmt.Printf("📊 Metadata entries: %d, preferences: %v\n", len(user.Metadata), user.Preferences)

	demonstrateDump(tars)

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("🎉 Primitives, nested structs, enums, vectors, maps and defaults round-tripped")
	fmt.Println(strings.Repeat("=", 70))
}

// demonstrateOptionalFields shows how absent optional fields decode to
// their declared defaults while zero values stay compact on the wire.
func demonstrateOptionalFields(tars *tarslite.Tarslite) {
	fmt.Println("\n🎯 Optional Fields and Defaults")
	fmt.Println(strings.Repeat("-", 60))

	minimal := map[string]interface{}{
		"id":   int32(100),
		"name": "Alice Smith",
		"address": map[string]interface{}{
			"street": "1 Infinite Loop",
			"city":   "Cupertino",
			// country omitted, decodes to its default
		},
	}
	encoded, err := tars.Marshal(minimal, "User")
	if err != nil {
		log.Fatalf("Failed to marshal minimal user: %v", err)
	}
	decoded, err := tars.Parse(encoded, "User")
	if err != nil {
		log.Fatalf("Failed to parse minimal user: %v", err)
	}
	addr := decoded["address"].(map[string]interface{})
	fmt.Printf("   📦 Encoded: %d bytes\n", len(encoded))
	fmt.Printf("   👤 Name: %s, Status: %v, Active: %v\n", decoded["name"], decoded["status"], decoded["active"])
	fmt.Printf("   🌍 Country: %v (schema default)\n", addr["country"])
	fmt.Printf("   🔢 Age: %v (%T)\n", decoded["age"], decoded["age"])

	zeroes := map[string]interface{}{
		"id":     int32(0),
		"name":   "",
		"active": false,
		"age":    0,
	}
	encoded, err = tars.Marshal(zeroes, "User")
	if err != nil {
		log.Fatalf("Failed to marshal zero user: %v", err)
	}
	fmt.Printf("   0️⃣  All-zero user: %d bytes: %s\n", len(encoded), hex.EncodeToString(encoded))
}

// demonstrateDump decodes a message without any schema.
func demonstrateDump(tars *tarslite.Tarslite) {
	fmt.Println("\n🔍 Schema-less Dump")
	fmt.Println(strings.Repeat("-", 60))

	e := wire.NewEncoder()
	_ = e.WriteInt32(0, 42)
	_ = e.WriteString(1, "hello")
	_ = wire.WriteMap(e, 2, map[string]int64{"a": 1, "b": 70000}, wire.String, wire.Int64)
	_ = e.WriteFloat64(20, 3.5)

	fields, err := tars.Dump(e.Bytes())
	if err != nil {
		log.Fatalf("Failed to dump: %v", err)
	}
	for _, f := range fields {
		fmt.Printf("   tag %-3d %-8s %v\n", f.Tag, f.Value.Mark(), wire.ToInterface(f.Value))
	}
}
