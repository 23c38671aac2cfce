package analysis

const sentimentPrompt = `Analyze the sentiment of this business news item:
Title: %s
Content: %s
Source: %s

Return the following in JSON format:
{
    "sentiment": "positive" | "negative" | "neutral",
    "confidence": 0.0-1.0,
    "impact_score": 0-10,
    "key_insight": "A short insight (max 100 characters)",
    "business_relevance": "high" | "medium" | "low"
}

Return only JSON, no other explanation.`

const insightsPrompt = `Act as a business intelligence analyst and produce weekly insights for the company %s.

Company news (%d items):
%s

Competitor activity (%d items):
%s

Write the insights in %s, using this JSON format:
{
    "opportunities": [
        {"title": "Opportunity title", "description": "Detailed description", "priority": "high|medium|low", "actionable": true|false}
    ],
    "threats": [
        {"title": "Threat title", "description": "Detailed description", "severity": "high|medium|low", "timeline": "immediate|short-term|long-term"}
    ],
    "trends": [
        {"title": "Trend title", "description": "Description", "strength": "strong|moderate|weak", "impact": "positive|negative|neutral"}
    ],
    "recommendations": [
        {"title": "Recommendation title", "description": "Detailed recommendation", "effort": "low|medium|high", "expected_impact": "high|medium|low"}
    ],
    "summary": "Overall summary (max 200 characters)"
}

Produce 3-5 items for each category. Return only JSON.`
