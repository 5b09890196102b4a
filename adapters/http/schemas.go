package http

import (
	"time"

	"github.com/lionscafe/api/core/validation"
)

// Request schemas. Field checks that need database state (duplicate
// emails, overlapping bookings) stay in the services; these cover
// shape, type, and range.

var registerSchema = validation.Schema{
	"email":    {Type: validation.TypeEmail, Required: true},
	"password": {Type: validation.TypeString, Required: true, Min: validation.Min(8), Max: validation.Max(72)},
	"name":     {Type: validation.TypeString, Required: true, Min: validation.Min(2), Max: validation.Max(100)},
}

var loginSchema = validation.Schema{
	"email":    {Type: validation.TypeEmail, Required: true},
	"password": {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
}

var refreshSchema = validation.Schema{
	"token": {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
}

var forgotPasswordSchema = validation.Schema{
	"email": {Type: validation.TypeEmail, Required: true},
}

var resetPasswordSchema = validation.Schema{
	"token":    {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
	"password": {Type: validation.TypeString, Required: true, Min: validation.Min(8), Max: validation.Max(72)},
}

var verifyEmailSchema = validation.Schema{
	"token": {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
}

var categorySchema = validation.Schema{
	"name":        {Type: validation.TypeString, Required: true, Min: validation.Min(1), Max: validation.Max(100)},
	"description": {Type: validation.TypeString, Max: validation.Max(500)},
	"sortOrder":   {Type: validation.TypeInt, Min: validation.Min(0), Default: int64(0)},
	"active":      {Type: validation.TypeBool, Default: true},
}

var menuItemSchema = validation.Schema{
	"categoryId":  {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
	"name":        {Type: validation.TypeString, Required: true, Min: validation.Min(1), Max: validation.Max(150)},
	"description": {Type: validation.TypeString, Max: validation.Max(1000)},
	"priceCents":  {Type: validation.TypeInt, Required: true, Min: validation.Min(1)},
	"imageUrl":    {Type: validation.TypeString, Max: validation.Max(500)},
	"available":   {Type: validation.TypeBool, Default: true},
	"featured":    {Type: validation.TypeBool, Default: false},
}

var itemAvailabilitySchema = validation.Schema{
	"available": {Type: validation.TypeBool, Required: true},
}

var orderSchema = validation.Schema{
	"type":    {Type: validation.TypeEnum, Required: true, Enum: []string{"dine_in", "takeaway", "qr"}},
	"tableId": {Type: validation.TypeString},
	"note":    {Type: validation.TypeString, Max: validation.Max(500)},
	"items": {
		Type:     validation.TypeArray,
		Required: true,
		Min:      validation.Min(1),
		Fields: validation.Schema{
			"itemId":   {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
			"quantity": {Type: validation.TypeInt, Required: true, Min: validation.Min(1), Max: validation.Max(50)},
			"note":     {Type: validation.TypeString, Max: validation.Max(200)},
		},
	},
}

var orderStatusSchema = validation.Schema{
	"status": {Type: validation.TypeEnum, Required: true,
		Enum: []string{"pending", "confirmed", "preparing", "ready", "completed", "cancelled"}},
}

var reservationSchema = validation.Schema{
	"tableId":         {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
	"partySize":       {Type: validation.TypeInt, Required: true, Min: validation.Min(1), Max: validation.Max(20)},
	"startsAt":        {Type: validation.TypeTime, Required: true},
	"durationMinutes": {Type: validation.TypeInt, Min: validation.Min(30), Max: validation.Max(360)},
	"note":            {Type: validation.TypeString, Max: validation.Max(500)},
}

var reservationUpdateSchema = validation.Schema{
	"tableId":         {Type: validation.TypeString},
	"partySize":       {Type: validation.TypeInt, Min: validation.Min(1), Max: validation.Max(20)},
	"startsAt":        {Type: validation.TypeTime},
	"durationMinutes": {Type: validation.TypeInt, Min: validation.Min(30), Max: validation.Max(360)},
	"note":            {Type: validation.TypeString, Max: validation.Max(500)},
}

var reservationStatusSchema = validation.Schema{
	"status": {Type: validation.TypeEnum, Required: true,
		Enum: []string{"pending", "confirmed", "seated", "completed", "cancelled", "no_show"}},
}

var tableSchema = validation.Schema{
	"number":   {Type: validation.TypeInt, Required: true, Min: validation.Min(1)},
	"capacity": {Type: validation.TypeInt, Required: true, Min: validation.Min(1), Max: validation.Max(20)},
}

var tableStatusSchema = validation.Schema{
	"status": {Type: validation.TypeEnum, Required: true,
		Enum: []string{"available", "occupied", "reserved", "cleaning"}},
}

var profileSchema = validation.Schema{
	"name":  {Type: validation.TypeString, Min: validation.Min(2), Max: validation.Max(100)},
	"email": {Type: validation.TypeEmail},
}

var passwordChangeSchema = validation.Schema{
	"currentPassword": {Type: validation.TypeString, Required: true, Min: validation.Min(1)},
	"newPassword":     {Type: validation.TypeString, Required: true, Min: validation.Min(8), Max: validation.Max(72)},
}

var roleSchema = validation.Schema{
	"role": {Type: validation.TypeEnum, Required: true,
		Enum: []string{"customer", "staff", "manager", "admin"}},
}

var activeSchema = validation.Schema{
	"active": {Type: validation.TypeBool, Required: true},
}

// Accessors for sanitized values. The schema guarantees the type, so
// a failed assertion just yields the zero value.

func vStr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func vInt(m map[string]any, key string) int {
	n, _ := m[key].(int64)
	return int(n)
}

func vBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func vTime(m map[string]any, key string) time.Time {
	t, _ := m[key].(time.Time)
	return t
}

func vHas(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func vArr(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
