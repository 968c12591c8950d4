// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fallback

import "strings"

// Category describes one business/site category the detector can classify a
// prompt into, together with the copy the template engine renders for it.
type Category struct {
	ID          string
	Label       string
	Keywords    []string
	GenericName string
	Tagline     string
	About       string
	Services    [3]Service
	CallToAct   string
}

// Service is one content card in the generated services section.
type Service struct {
	Title string
	Body  string
}

// categories is the ordered (keyword-set, category) table. Order matters:
// the first category with a keyword hit wins, so more specific trades sit
// above broad catch-alls like "business".
var categories = []Category{
	{
		ID:          "restaurant",
		Label:       "Restaurant",
		Keywords:    []string{"restaurant", "cafe", "bistro", "diner", "eatery", "pizzeria", "pizza", "bakery", "food", "dining", "menu"},
		GenericName: "The Golden Fork",
		Tagline:     "Fresh ingredients, honest cooking, and a table waiting for you.",
		About:       "From seasonal menus to house-made classics, our kitchen is built around quality ingredients and food made from scratch every day.",
		Services: [3]Service{
			{Title: "Seasonal Menu", Body: "A rotating menu built on local produce and what tastes best right now."},
			{Title: "Private Dining", Body: "Host dinners, celebrations, and events in our private dining room."},
			{Title: "Catering", Body: "Bring our kitchen to your next event with full-service catering."},
		},
		CallToAct: "Reserve a Table",
	},
	{
		ID:          "gym",
		Label:       "Fitness Studio",
		Keywords:    []string{"gym", "fitness", "workout", "training", "exercise", "crossfit", "health club", "personal trainer"},
		GenericName: "Peak Performance Fitness",
		Tagline:     "Stronger every session. Fitness coaching and training that meets you where you are.",
		About:       "Our gym pairs modern equipment with coaches who actually know your name. Whether you are starting out or chasing a personal record, every program is built around your goals.",
		Services: [3]Service{
			{Title: "Personal Training", Body: "One-on-one fitness coaching with programs tailored to your goals."},
			{Title: "Group Classes", Body: "High-energy group workouts, from strength circuits to mobility sessions."},
			{Title: "Open Gym", Body: "Full access to racks, free weights, and cardio equipment, seven days a week."},
		},
		CallToAct: "Start Your Free Week",
	},
	{
		ID:          "renovation",
		Label:       "Renovation & Construction",
		Keywords:    []string{"renovation", "remodeling", "construction", "contractor", "building", "roofing", "flooring", "plumbing", "electrical", "hvac", "landscaping"},
		GenericName: "Keystone Renovations",
		Tagline:     "Quality craftsmanship for every room in your home.",
		About:       "Licensed, insured, and on schedule. We handle renovation projects end to end, from the first sketch to the final walkthrough.",
		Services: [3]Service{
			{Title: "Kitchen & Bath", Body: "Complete kitchen and bathroom remodels, from layout to finish work."},
			{Title: "Additions", Body: "Home additions and structural work that blends in like it was always there."},
			{Title: "Exterior Work", Body: "Roofing, siding, decks, and everything that keeps the weather outside."},
		},
		CallToAct: "Request an Estimate",
	},
	{
		ID:          "salon",
		Label:       "Salon & Spa",
		Keywords:    []string{"salon", "spa", "barber", "hair", "massage", "beauty", "nails", "stylist"},
		GenericName: "Luxe Beauty Studio",
		Tagline:     "Look sharp, feel relaxed. Expert styling and spa care under one roof.",
		About:       "Our stylists and therapists bring years of experience and a genuine love of the craft. Walk out feeling like the best version of yourself.",
		Services: [3]Service{
			{Title: "Hair & Styling", Body: "Cuts, color, and styling from stylists who keep up with the craft."},
			{Title: "Spa Treatments", Body: "Massage, facials, and skin care designed around genuine relaxation."},
			{Title: "Special Occasions", Body: "Wedding and event packages so you look your best on the big day."},
		},
		CallToAct: "Book an Appointment",
	},
	{
		ID:          "medical",
		Label:       "Medical Practice",
		Keywords:    []string{"medical", "clinic", "doctor", "dental", "dentist", "healthcare", "chiropractor", "therapy", "veterinary", "vet", "pharmacy"},
		GenericName: "Wellness Point Clinic",
		Tagline:     "Care that puts patients first, from checkups to specialized treatment.",
		About:       "Our practice combines experienced clinicians with modern facilities. Same-week appointments, clear communication, and care plans you can actually follow.",
		Services: [3]Service{
			{Title: "Preventive Care", Body: "Routine checkups and screenings that catch problems early."},
			{Title: "Specialized Treatment", Body: "Focused care pathways delivered by experienced practitioners."},
			{Title: "Patient Support", Body: "Clear follow-ups, reminders, and help navigating insurance."},
		},
		CallToAct: "Schedule a Visit",
	},
	{
		ID:          "realestate",
		Label:       "Real Estate",
		Keywords:    []string{"real estate", "realtor", "property", "homes", "housing", "rental", "apartment"},
		GenericName: "Harborview Realty",
		Tagline:     "Local expertise for buying, selling, and finding the right home.",
		About:       "We know these neighborhoods street by street. Whether you are buying your first home or listing your tenth property, we handle the details and the negotiation.",
		Services: [3]Service{
			{Title: "Buying", Body: "Neighborhood-level guidance and showings that respect your time."},
			{Title: "Selling", Body: "Pricing, staging, and marketing that gets your property seen."},
			{Title: "Property Management", Body: "Full-service management for owners who want hands-off rentals."},
		},
		CallToAct: "Talk to an Agent",
	},
	{
		ID:          "law",
		Label:       "Law Firm",
		Keywords:    []string{"law", "legal", "attorney", "lawyer", "firm", "litigation", "notary"},
		GenericName: "Sterling & Associates",
		Tagline:     "Clear counsel and committed representation when it matters most.",
		About:       "Our attorneys combine courtroom experience with plain-language advice. You will always know where your case stands and what comes next.",
		Services: [3]Service{
			{Title: "Consultation", Body: "Straightforward case evaluations with honest assessments of your options."},
			{Title: "Representation", Body: "Diligent advocacy in negotiations, mediation, and the courtroom."},
			{Title: "Document Services", Body: "Contracts, estate planning, and filings prepared right the first time."},
		},
		CallToAct: "Request a Consultation",
	},
	{
		ID:          "photography",
		Label:       "Photography",
		Keywords:    []string{"photographer", "photography", "portrait", "wedding photo", "studio"},
		GenericName: "Golden Hour Studio",
		Tagline:     "Photography that captures the moments worth keeping.",
		About:       "From weddings to brand shoots, we bring an editorial eye and an easy working style. The photos feel like you, because the session did too.",
		Services: [3]Service{
			{Title: "Portraits", Body: "Individual and family sessions, in studio or on location."},
			{Title: "Events", Body: "Weddings and celebrations documented without getting in the way."},
			{Title: "Commercial", Body: "Product and brand photography built for your marketing channels."},
		},
		CallToAct: "Check Availability",
	},
	{
		ID:          "tech",
		Label:       "Software & Technology",
		Keywords:    []string{"saas", "software", "startup", "app", "platform", "api", "developer", "tech", "it support", "analytics", "crypto", "blockchain"},
		GenericName: "Forge Labs",
		Tagline:     "Software that ships. Tools and platforms built for real teams.",
		About:       "We build and operate software products with a bias for reliability and speed. Less ceremony, more shipped features.",
		Services: [3]Service{
			{Title: "Product Platform", Body: "A dependable core platform with the integrations your team already uses."},
			{Title: "Developer API", Body: "Clean, well-documented APIs so you can build on top of us."},
			{Title: "Support & Onboarding", Body: "Real humans who answer, plus docs that actually help."},
		},
		CallToAct: "Get Started Free",
	},
	{
		ID:          "retail",
		Label:       "Shop & Boutique",
		Keywords:    []string{"shop", "store", "boutique", "marketplace", "ecommerce", "clothing", "apparel", "vintage", "collectible"},
		GenericName: "Maple & Main",
		Tagline:     "A curated collection you will not find anywhere else.",
		About:       "Every piece in our shop is picked by hand. We favor small makers, honest materials, and things built to last.",
		Services: [3]Service{
			{Title: "New Arrivals", Body: "Fresh finds added every week, from staples to one-of-a-kind pieces."},
			{Title: "Gift Cards", Body: "The easy gift that always fits, available in any amount."},
			{Title: "Local Pickup", Body: "Order online and pick up in store, usually same day."},
		},
		CallToAct: "Browse the Collection",
	},
	{
		ID:          "education",
		Label:       "Learning & Coaching",
		Keywords:    []string{"tutor", "tutoring", "course", "school", "coaching", "coach", "training program", "consultant", "consulting", "mentorship"},
		GenericName: "Brightpath Coaching",
		Tagline:     "Guidance that turns goals into progress you can measure.",
		About:       "Our coaches and instructors meet you at your level and build a plan you will actually follow. Progress reviews keep everything honest.",
		Services: [3]Service{
			{Title: "One-on-One Sessions", Body: "Private coaching built around your schedule and your goals."},
			{Title: "Group Programs", Body: "Structured cohorts with accountability built in."},
			{Title: "Resources", Body: "Worksheets, recordings, and templates you keep forever."},
		},
		CallToAct: "Book a Session",
	},
	{
		ID:          "travel",
		Label:       "Travel & Hospitality",
		Keywords:    []string{"hotel", "travel", "tour", "vacation", "lodging", "inn", "resort", "destination"},
		GenericName: "Wanderlight Travel",
		Tagline:     "Trips planned by people who have actually been there.",
		About:       "We design stays and itineraries around what you love, not a brochure. Expect real recommendations and zero tourist traps.",
		Services: [3]Service{
			{Title: "Custom Itineraries", Body: "Day-by-day plans tuned to your pace and interests."},
			{Title: "Comfortable Stays", Body: "Hand-picked rooms and rentals we would book ourselves."},
			{Title: "Local Experiences", Body: "Guides, tastings, and tours run by locals who care."},
		},
		CallToAct: "Plan Your Trip",
	},
}

// genericCategory is the catch-all used when no keyword matches.
var genericCategory = Category{
	ID:          "business",
	Label:       "Business",
	Keywords:    nil,
	GenericName: "Summit Solutions",
	Tagline:     "Professional service, delivered with care and attention to detail.",
	About:       "We focus on doing the fundamentals exceptionally well: clear communication, reliable delivery, and work we are proud to put our name on.",
	Services: [3]Service{
		{Title: "Our Services", Body: "A full range of professional services tailored to what you need."},
		{Title: "Why Choose Us", Body: "Experienced, responsive, and committed to getting it right."},
		{Title: "Get in Touch", Body: "Tell us about your project and we will follow up within one business day."},
	},
	CallToAct: "Contact Us",
}

// DetectCategory classifies a prompt by substring matching against the
// ordered keyword table. The first category with a match wins.
func DetectCategory(prompt string) Category {
	p := strings.ToLower(prompt)
	for _, c := range categories {
		for _, kw := range c.Keywords {
			if strings.Contains(p, kw) {
				return c
			}
		}
	}
	return genericCategory
}
