package directory

import (
	"context"
	"fmt"
)

// BuiltinCities is the list installed by Seed.
var BuiltinCities = []City{
	{Slug: "makkah", Name: "Makkah", Country: "Saudi Arabia", Latitude: 21.4225, Longitude: 39.8262, Timezone: "Asia/Riyadh", Method: "Makkah"},
	{Slug: "madinah", Name: "Madinah", Country: "Saudi Arabia", Latitude: 24.4672, Longitude: 39.6111, Timezone: "Asia/Riyadh", Method: "Makkah"},
	{Slug: "riyadh", Name: "Riyadh", Country: "Saudi Arabia", Latitude: 24.7136, Longitude: 46.6753, Timezone: "Asia/Riyadh", Method: "Makkah"},
	{Slug: "dubai", Name: "Dubai", Country: "United Arab Emirates", Latitude: 25.2048, Longitude: 55.2708, Timezone: "Asia/Dubai", Method: "Makkah"},
	{Slug: "doha", Name: "Doha", Country: "Qatar", Latitude: 25.2854, Longitude: 51.5310, Timezone: "Asia/Qatar", Method: "Makkah"},
	{Slug: "cairo", Name: "Cairo", Country: "Egypt", Latitude: 30.0444, Longitude: 31.2357, Timezone: "Africa/Cairo", Method: "Egypt"},
	{Slug: "casablanca", Name: "Casablanca", Country: "Morocco", Latitude: 33.5731, Longitude: -7.5898, Timezone: "Africa/Casablanca", Method: "MWL"},
	{Slug: "istanbul", Name: "Istanbul", Country: "Turkey", Latitude: 41.0082, Longitude: 28.9784, Timezone: "Europe/Istanbul", Method: "MWL"},
	{Slug: "tehran", Name: "Tehran", Country: "Iran", Latitude: 35.6892, Longitude: 51.3890, Timezone: "Asia/Tehran", Method: "Tehran"},
	{Slug: "karachi", Name: "Karachi", Country: "Pakistan", Latitude: 24.8607, Longitude: 67.0011, Timezone: "Asia/Karachi", Method: "Karachi"},
	{Slug: "lahore", Name: "Lahore", Country: "Pakistan", Latitude: 31.5204, Longitude: 74.3587, Timezone: "Asia/Karachi", Method: "Karachi"},
	{Slug: "dhaka", Name: "Dhaka", Country: "Bangladesh", Latitude: 23.8103, Longitude: 90.4125, Timezone: "Asia/Dhaka", Method: "Karachi"},
	{Slug: "delhi", Name: "Delhi", Country: "India", Latitude: 28.6139, Longitude: 77.2090, Timezone: "Asia/Kolkata", Method: "Karachi"},
	{Slug: "kuala-lumpur", Name: "Kuala Lumpur", Country: "Malaysia", Latitude: 3.1390, Longitude: 101.6869, Timezone: "Asia/Kuala_Lumpur", Method: "MWL"},
	{Slug: "jakarta", Name: "Jakarta", Country: "Indonesia", Latitude: -6.2088, Longitude: 106.8456, Timezone: "Asia/Jakarta", Method: "MWL"},
	{Slug: "london", Name: "London", Country: "United Kingdom", Latitude: 51.5074, Longitude: -0.1278, Timezone: "Europe/London", Method: "MWL"},
	{Slug: "birmingham", Name: "Birmingham", Country: "United Kingdom", Latitude: 52.4862, Longitude: -1.8904, Timezone: "Europe/London", Method: "MWL"},
	{Slug: "paris", Name: "Paris", Country: "France", Latitude: 48.8566, Longitude: 2.3522, Timezone: "Europe/Paris", Method: "MWL"},
	{Slug: "berlin", Name: "Berlin", Country: "Germany", Latitude: 52.5200, Longitude: 13.4050, Timezone: "Europe/Berlin", Method: "MWL"},
	{Slug: "new-york", Name: "New York", Country: "United States", Latitude: 40.7128, Longitude: -74.0060, Timezone: "America/New_York", Method: "ISNA"},
	{Slug: "chicago", Name: "Chicago", Country: "United States", Latitude: 41.8781, Longitude: -87.6298, Timezone: "America/Chicago", Method: "ISNA"},
	{Slug: "dearborn", Name: "Dearborn", Country: "United States", Latitude: 42.3223, Longitude: -83.1763, Timezone: "America/Detroit", Method: "ISNA"},
	{Slug: "los-angeles", Name: "Los Angeles", Country: "United States", Latitude: 34.0522, Longitude: -118.2437, Timezone: "America/Los_Angeles", Method: "ISNA"},
	{Slug: "toronto", Name: "Toronto", Country: "Canada", Latitude: 43.6532, Longitude: -79.3832, Timezone: "America/Toronto", Method: "ISNA"},
	{Slug: "sydney", Name: "Sydney", Country: "Australia", Latitude: -33.8688, Longitude: 151.2093, Timezone: "Australia/Sydney", Method: "MWL"},
	{Slug: "lagos", Name: "Lagos", Country: "Nigeria", Latitude: 6.5244, Longitude: 3.3792, Timezone: "Africa/Lagos", Method: "MWL"},
}

// Seed upserts BuiltinCities into store. Running it again is harmless.
func Seed(ctx context.Context, store Store) error {
	for _, c := range BuiltinCities {
		if err := store.UpsertCity(ctx, c); err != nil {
			return fmt.Errorf("seed %s: %w", c.Slug, err)
		}
	}
	return nil
}
