package prompts

import "github.com/dennisdiepolder/eduvoice/internal/types"

var categoryLabels = map[types.Category]map[types.Language]string{
	types.CategoryPublicSecured: {
		types.LangEnglish:  "secured public bank loan",
		types.LangHinglish: "government bank ka secured loan",
		types.LangTelugu:   "government bank secured loan",
	},
	types.CategoryPrivateUnsecured: {
		types.LangEnglish:  "unsecured private lender loan",
		types.LangHinglish: "bina collateral wala private loan",
		types.LangTelugu:   "collateral lekunda private loan",
	},
	types.CategoryIntlUSD: {
		types.LangEnglish:  "international USD loan",
		types.LangHinglish: "international USD loan",
		types.LangTelugu:   "international USD loan",
	},
	types.CategoryEscalate: {
		types.LangEnglish:  "specialist review",
		types.LangHinglish: "specialist review",
		types.LangTelugu:   "specialist review",
	},
}

// defaultTemplates is the built-in EduVoice Finance prompt set. Hinglish and
// Telugu are romanized, matching how the speech collaborator expects input.
func defaultTemplates() map[string]map[types.Language]string {
	return map[string]map[types.Language]string{
		"greeting": {
			types.LangEnglish:  "Hello! This is Priya calling from EduVoice Finance about your study abroad loan enquiry. I would like to ask a few quick questions to find the best loan options for you.",
			types.LangHinglish: "Namaste! Main EduVoice Finance se Priya bol rahi hoon, aapke study abroad loan enquiry ke baare mein. Best loan options dhoondhne ke liye main aapse kuch chhote sawaal poochna chahungi.",
			types.LangTelugu:   "Namaskaram! Nenu EduVoice Finance nunchi Priya matladutunnanu, mee study abroad loan enquiry gurinchi. Mee kosam best loan options kanukkovadaniki konni chinna prashnalu adugutanu.",
		},
		"intent_confirmation": {
			types.LangEnglish:  "Thank you for calling EduVoice Finance. Are you looking for an education loan for studying abroad?",
			types.LangHinglish: "EduVoice Finance ko call karne ke liye dhanyavad. Kya aap videsh mein padhai ke liye education loan dhoondh rahe hain?",
			types.LangTelugu:   "EduVoice Finance ki call chesinanduku dhanyavadalu. Meeru videshallo chadavadaniki education loan kosam chustunnara?",
		},
		"language_detection": {
			types.LangEnglish:  "Before we begin, which language would you prefer: English, Hindi, or Telugu?",
			types.LangHinglish: "Shuru karne se pehle, aap kaunsi bhasha mein baat karna chahenge: Hindi, English, ya Telugu?",
			types.LangTelugu:   "Modalu pettaka mundu, meeru e bhashalo matladalanukuntunnaru: Telugu, Hindi, leda English?",
		},
		"degree_question": {
			types.LangEnglish:  "What degree are you planning to study: a Bachelor's, Master's, or PhD?",
			types.LangHinglish: "Aap kaunsi degree ke liye plan kar rahe hain: Bachelor's, Master's, ya PhD?",
			types.LangTelugu:   "Meeru e degree kosam plan chestunnaru: Bachelor's, Master's, leda PhD?",
		},
		"country_question": {
			types.LangEnglish:  "Which country are you planning to study in?",
			types.LangHinglish: "Aap kis desh mein padhai karne ka soch rahe hain?",
			types.LangTelugu:   "Meeru e deshamlo chadavalanukuntunnaru?",
		},
		"loan_amount_question": {
			types.LangEnglish:  "Roughly how much loan amount are you looking for, in rupees?",
			types.LangHinglish: "Aapko lagbhag kitne rupaye ka loan chahiye?",
			types.LangTelugu:   "Meeku daadapu entha loan amount kavali, rupayallo?",
		},
		"offer_letter_question": {
			types.LangEnglish:  "Have you received an admission offer letter from the university?",
			types.LangHinglish: "Kya aapko university se admission offer letter mil gaya hai?",
			types.LangTelugu:   "Meeku university nunchi admission offer letter vachinda?",
		},
		"coapplicant_itr_question": {
			types.LangEnglish:  "Does your co-applicant, for example a parent, file income tax returns?",
			types.LangHinglish: "Kya aapke co-applicant, jaise parents, income tax return file karte hain?",
			types.LangTelugu:   "Mee co-applicant, ante parents, income tax returns file chestara?",
		},
		"collateral_question": {
			types.LangEnglish:  "Do you have any collateral to pledge, such as property or a fixed deposit?",
			types.LangHinglish: "Kya aapke paas girvi rakhne ke liye koi collateral hai, jaise property ya fixed deposit?",
			types.LangTelugu:   "Meeku pledge cheyadaniki collateral emaina unda, property leda fixed deposit laaga?",
		},
		"visa_timeline_question": {
			types.LangEnglish:  "When is your visa interview or intake? For example, in how many days or weeks?",
			types.LangHinglish: "Aapka visa interview ya intake kab hai? Jaise, kitne din ya hafton mein?",
			types.LangTelugu:   "Mee visa interview leda intake eppudu? Udaharanaki, enni rojullo leda enni varalalo?",
		},
		"qualification_summary": {
			types.LangEnglish:  "Great, that is everything I need. Based on your answers, you qualify for our {category} option. Recommended lenders: {lenders}. Would you like me to connect you with a loan specialist right now?",
			types.LangHinglish: "Bahut badhiya, mujhe saari jaankari mil gayi. Aapke answers ke hisaab se aap hamare {category} option ke liye qualify karte hain. Recommended lenders: {lenders}. Kya main aapko abhi ek loan specialist se connect karoon?",
			types.LangTelugu:   "Chala bagundi, naaku kavalsina antha samacharam vachindi. Mee answers prakaram meeru maa {category} option ki qualify avutunnaru. Recommended lenders: {lenders}. Mimmalni ippude loan specialist tho connect cheyamantara?",
		},
		"qualification_summary_escalate": {
			types.LangEnglish:  "Thank you, that is everything I need. Your case needs a closer look from our loan specialist team. Would you like me to connect you with a specialist right now?",
			types.LangHinglish: "Dhanyavad, mujhe saari jaankari mil gayi. Aapke case ko hamari loan specialist team dhyan se dekhegi. Kya main aapko abhi ek specialist se connect karoon?",
			types.LangTelugu:   "Dhanyavadalu, naaku kavalsina antha samacharam vachindi. Mee case ni maa loan specialist team jagrattaga chustundi. Mimmalni ippude specialist tho connect cheyamantara?",
		},
		"handoff_offer": {
			types.LangEnglish:  "Would you like me to connect you with a loan specialist?",
			types.LangHinglish: "Kya main aapko loan specialist se connect karoon?",
			types.LangTelugu:   "Mimmalni loan specialist tho connect cheyamantara?",
		},
		"handoff_offer_escalation": {
			types.LangEnglish:  "I am sorry for the trouble. Let me get someone to help you. Shall I connect you with a specialist right away?",
			types.LangHinglish: "Takleef ke liye maafi chahti hoon. Main kisi ko aapki madad ke liye bula deti hoon. Kya main aapko turant specialist se connect karoon?",
			types.LangTelugu:   "Ibbandiki kshaminchandi. Meeku help cheyadaniki okarini pilusthanu. Ventane specialist tho connect cheyamantara?",
		},
		"handoff_accepted": {
			types.LangEnglish:  "Perfect, connecting you with our loan specialist now. Please stay on the line.",
			types.LangHinglish: "Perfect, main aapko abhi hamare loan specialist se connect kar rahi hoon. Line par bane rahiye.",
			types.LangTelugu:   "Perfect, ippude mimmalni maa loan specialist tho connect chestunnanu. Line lo undandi.",
		},
		"handoff_failed": {
			types.LangEnglish:  "I am sorry, our specialists are all busy right now. When would be a good time to call you back? For example, tomorrow morning or this evening?",
			types.LangHinglish: "Maaf kijiye, hamare specialists abhi busy hain. Aapko wapas call karne ka sahi samay kya hoga? Jaise kal subah ya aaj shaam?",
			types.LangTelugu:   "Kshaminchandi, maa specialists ippudu busy ga unnaru. Mimmalni malli eppudu call cheyamantaru? Udaharanaki repu podduna leda ee sayantram?",
		},
		"callback_scheduling": {
			types.LangEnglish:  "No problem. When would be a good time to call you back? For example, tomorrow morning or this evening?",
			types.LangHinglish: "Koi baat nahi. Aapko wapas call karne ka sahi samay kya hoga? Jaise kal subah ya aaj shaam?",
			types.LangTelugu:   "Parledu. Mimmalni malli eppudu call cheyamantaru? Udaharanaki repu podduna leda ee sayantram?",
		},
		"callback_confirmed": {
			types.LangEnglish:  "Done, we will call you back at that time. Thank you for your time, and have a great day!",
			types.LangHinglish: "Ho gaya, hum aapko us samay wapas call karenge. Dhanyavad, aapka din shubh ho!",
			types.LangTelugu:   "Ayyindi, memu aa time ki malli call chestamu. Dhanyavadalu, mee roju bagundali!",
		},
		"goodbye": {
			types.LangEnglish:  "Thank you for your time. Have a great day!",
			types.LangHinglish: "Aapke samay ke liye dhanyavad. Aapka din shubh ho!",
			types.LangTelugu:   "Mee time ki dhanyavadalu. Mee roju bagundali!",
		},
		"clarification_prefix": {
			types.LangEnglish:  "Sorry, I did not quite catch that. ",
			types.LangHinglish: "Maaf kijiye, main samajh nahi payi. ",
			types.LangTelugu:   "Kshaminchandi, naaku sariga artham kaledu. ",
		},
		"empathy_prefix": {
			types.LangEnglish:  "I understand this can be stressful, and I am here to help. ",
			types.LangHinglish: "Main samajh sakti hoon ki ye stressful ho sakta hai, main aapki madad ke liye hoon. ",
			types.LangTelugu:   "Idi stress ga undochu ani naaku telusu, nenu meeku help cheyadaniki unnanu. ",
		},
		"silence_prefix": {
			types.LangEnglish:  "Are you still there? ",
			types.LangHinglish: "Kya aap sun rahe hain? ",
			types.LangTelugu:   "Meeru vintunnara? ",
		},
		"language_switch_ack": {
			types.LangEnglish:  "Sure, let us continue in English. ",
			types.LangHinglish: "Theek hai, hum Hindi mein baat karte hain. ",
			types.LangTelugu:   "Sare, manam Telugu lo matladukundamu. ",
		},
	}
}
