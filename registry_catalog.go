package retentionkeeper

// DefaultPatternCatalog returns the built-in pattern catalog.
// Negative weights mark noise; positive weights mark signal worth retaining.
func DefaultPatternCatalog() []Pattern {
	return []Pattern{
		// --- Filler / noise (negative weight) ---
		{Name: "greeting", Regex: `\b(hi|hello|hey|good morning|good evening|good afternoon)\b`, Weight: -3, Category: "filler"},
		{Name: "smalltalk_howareyou", Regex: `how are you( (doing|today))?`, Weight: -2, Category: "filler"},
		{Name: "farewell", Regex: `\b(bye|goodbye|see you|talk later|catch you later)\b`, Weight: -3, Category: "filler"},
		{Name: "affirmation_filler", Regex: `\b(ok(ay)?|sure|alright|got it|sounds good)\b`, Weight: -2, Category: "filler"},
		{Name: "thanks_filler", Regex: `\b(thanks|thank you|appreciate it)\b`, Weight: -2, Category: "filler"},
		{Name: "weather_smalltalk", Regex: `\b(nice weather|raining|sunny out|cold today|hot today)\b`, Weight: -3, Category: "filler"},
		{Name: "filler_word", Regex: `\b(um+|uh+|like i said|you know|anyway)\b`, Weight: -2, Category: "filler"},
		{Name: "laughter", Regex: `\b(ha+ha+|lol|lmao|haha)\b`, Weight: -2, Category: "filler"},

		// --- Medical (high positive weight, severity-amplifiable) ---
		{Name: "allergy_mention", Regex: `\b\w+ allergy\b|\ballerg(ic|y) to\b`, Weight: 12, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true, "allergy": true}},
		{Name: "epipen_device", Regex: `\bepi-?pen\b`, Weight: 10, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "chronic_condition", Regex: `\b(diabetes|diabetic|asthma|epilepsy|seizure|heart condition)\b`, Weight: 12, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "medication_mention", Regex: `\b(my medication|prescribed|insulin|inhaler|dosage)\b`, Weight: 10, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "diagnosis_mention", Regex: `\b(diagnosed with|my diagnosis|my condition is)\b`, Weight: 10, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "symptom_mention", Regex: `\b(chest pain|shortness of breath|can't breathe|severe pain|dizziness)\b`, Weight: 11, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "surgery_mention", Regex: `\b(surgery|operation scheduled|hospitalized)\b`, Weight: 9, Category: "medical", ModifierTags: map[string]bool{"severity_amplifiable": true}},

		// --- Safety / emergency ---
		{Name: "emergency_contact", Regex: `\bemergency contact\b|\bin case of emergency\b`, Weight: 11, Category: "safety", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "safety_threat", Regex: `\b(threatened me|afraid of him|afraid of her|not safe|abusive)\b`, Weight: 13, Category: "safety", ModifierTags: map[string]bool{"severity_amplifiable": true}},
		{Name: "suicidal_ideation", Regex: `\b(want to die|end it all|hurt myself)\b`, Weight: 16, Category: "safety", ModifierTags: map[string]bool{"severity_amplifiable": true}},

		// --- Identity ---
		{Name: "name_introduction", Regex: `\bmy name is\b|\bcall me\b|\bi'm called\b`, Weight: 9, Category: "identity"},
		{Name: "birthday_mention", Regex: `\bmy birthday is\b|\bi was born on\b`, Weight: 8, Category: "identity"},
		{Name: "age_mention", Regex: `\bi am \d+ years old\b|\bi'm \d+\b`, Weight: 6, Category: "identity"},
		{Name: "occupation_mention", Regex: `\bi work as\b|\bi'm a\b|\bmy job is\b`, Weight: 6, Category: "identity"},

		// --- Family / relationships ---
		{Name: "family_member", Regex: `\bmy (daughter|son|wife|husband|mother|father|mom|dad|sister|brother|grandmother|grandfather)\b`, Weight: 9, Category: "fact"},
		{Name: "pet_mention", Regex: `\bmy (dog|cat|pet)\b`, Weight: 6, Category: "fact"},
		{Name: "relationship_status", Regex: `\b(my partner|my girlfriend|my boyfriend|engaged to|married to)\b`, Weight: 8, Category: "fact"},

		// --- Preferences ---
		{Name: "likes_statement", Regex: `\bi love\b|\bi like\b|\bi enjoy\b|\bi'm a fan of\b`, Weight: 6, Category: "preference"},
		{Name: "dislikes_statement", Regex: `\bi hate\b|\bi can't stand\b|\bi don't like\b`, Weight: 6, Category: "preference"},
		{Name: "cant_anymore", Regex: `\bcan't (\w+ ){1,3}anymore\b|\bcannot (\w+ ){1,3}anymore\b|\bno longer \w+\b`, Weight: 5, Category: "preference"},
		{Name: "favorite_mention", Regex: `\bmy favorite\b|\bfavourite\b`, Weight: 6, Category: "preference"},
		{Name: "hobby_mention", Regex: `\bi play\b|\bi collect\b|\bmy hobby\b`, Weight: 5, Category: "preference"},

		// --- Logistics / scheduling ---
		{Name: "appointment_mention", Regex: `\bmy appointment\b|\bscheduled for\b|\bbooked for\b`, Weight: 7, Category: "logistics"},
		{Name: "address_mention", Regex: `\bmy address is\b|\bi live at\b|\bi live in\b`, Weight: 8, Category: "logistics"},
		{Name: "phone_mention", Regex: `\bmy (phone|number) is\b|\bcall me at\b`, Weight: 7, Category: "logistics"},
		{Name: "email_mention", Regex: `\bmy email is\b`, Weight: 6, Category: "logistics"},
		{Name: "deadline_mention", Regex: `\bdue (by|on)\b|\bdeadline is\b`, Weight: 7, Category: "logistics"},

		// --- Emotional ---
		{Name: "fear_phobia", Regex: `\bterrifies?\b|\bterrified\b|\bafraid of\b|\bscared of\b|\bpanic\b`, Weight: 9, Category: "emotional"},
		{Name: "sadness_statement", Regex: `\bheartbroken\b|\bdevastated\b|\bi feel sad\b|\bi'm depressed\b`, Weight: 9, Category: "emotional"},
		{Name: "joy_statement", Regex: `\bi'm thrilled\b|\bi'm ecstatic\b|\bso happy\b|\bdelighted\b`, Weight: 7, Category: "emotional"},
		{Name: "anger_statement", Regex: `\bfurious\b|\bi'm so angry\b|\bpisses me off\b`, Weight: 7, Category: "emotional"},
		{Name: "grief_mention", Regex: `\bpassed away\b|\bmy condolences\b|\bi lost my\b`, Weight: 10, Category: "emotional"},

		// --- Location / travel ---
		{Name: "travel_plan", Regex: `\btraveling to\b|\bflying to\b|\bmoving to\b`, Weight: 6, Category: "fact"},
		{Name: "location_origin", Regex: `\bi'm from\b|\bgrew up in\b`, Weight: 6, Category: "fact"},

		// --- Work / organization ---
		{Name: "employer_mention", Regex: `\bi work at\b|\bi work for\b`, Weight: 6, Category: "fact"},
		{Name: "project_mention", Regex: `\bworking on a project\b|\bmy team is\b`, Weight: 5, Category: "fact"},

		// --- Goals / plans (semantic but durable) ---
		{Name: "goal_statement", Regex: `\bmy goal is\b|\bi'm trying to\b|\bi plan to\b`, Weight: 7, Category: "fact"},
		{Name: "anniversary_mention", Regex: `\bour anniversary\b|\bwedding anniversary\b`, Weight: 7, Category: "fact"},

		// --- Low-signal acknowledgements that still carry content ---
		{Name: "question_only", Regex: `^(what|where|when|why|how|who)\b.*\?$`, Weight: -1, Category: "filler"},
		{Name: "short_confirmation", Regex: `^(yes|no|yeah|nope|maybe)\.?$`, Weight: -2, Category: "filler"},
	}
}
